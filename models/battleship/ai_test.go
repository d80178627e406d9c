package battleship

import "testing"

func TestChooseTargetFinishesDamagedSegment(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		field := newLaidOutField(t, standardLayout)
		field.Damage(1, 0, 1)

		target, ok := ChooseTarget(field, NewRand(seed))
		if !ok {
			t.Fatal("expected a target")
		}
		if target != NewPosition(1, 0) {
			t.Fatalf("seed %d: expected damaged segment 1,0\t got: %v", seed, target)
		}
	}
}

func TestChooseTargetFrontier(t *testing.T) {
	field := newLaidOutField(t, standardLayout)
	// Finish one segment so only the frontier around it is left
	field.Damage(1, 0, 2)

	frontier := map[Position]bool{
		NewPosition(0, 0): true,
		NewPosition(2, 0): true,
		NewPosition(1, 1): true,
	}
	for seed := int64(1); seed <= 50; seed++ {
		target, ok := ChooseTarget(field, NewRand(seed))
		if !ok || !frontier[target] {
			t.Fatalf("seed %d: expected a cell next to the hit\t got: %v", seed, target)
		}
	}
}

func TestChooseTargetFallbackAndExhaustion(t *testing.T) {
	field := NewPlayingField(2, 1)

	target, ok := ChooseTarget(field, NewRand(1))
	if !ok || !field.IsValid(target.X, target.Y) {
		t.Fatalf("expected any unknown cell\t got: %v", target)
	}

	field.Damage(0, 0, 1)
	field.Damage(1, 0, 1)
	if target, ok := ChooseTarget(field, NewRand(1)); ok || target != NoPosition {
		t.Fatalf("expected no target on a resolved field\t got: %v", target)
	}
}
