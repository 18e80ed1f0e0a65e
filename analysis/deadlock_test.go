package analysis

import (
	"context"
	"testing"
)

func TestDeadlock_UnrefillableBufferIsDeadlocked(t *testing.T) {
	m := producerConsumerEmptyBuffer(t)
	suite := NewSuite(m)
	r, err := suite.Deadlock.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("hasDeadlock", false) != true {
		t.Fatal("expected the empty, unrefillable Buffer to be an immediate deadlock")
	}
	if r.Get("structuralRisk", false) != true {
		t.Fatal("expected the unmarked {Buffer} siphon to register as a structural risk")
	}
}

func TestDeadlock_TwoPlaceCycleNeverDeadlocks(t *testing.T) {
	m := twoPlaceCycle(t)
	suite := NewSuite(m)
	r, err := suite.Deadlock.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("hasDeadlock", false) != false {
		t.Fatal("expected the perpetually cycling net to have no deadlock")
	}
}
