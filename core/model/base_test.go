package model

import (
	"testing"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

func TestBaseEstimatorLifecycle(t *testing.T) {
	var e BaseEstimator

	if e.IsFitted() {
		t.Fatal("zero value must be unfitted")
	}

	err := e.RequireFitted("Model", "Predict")
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if nf.ModelName != "Model" || nf.Method != "Predict" {
		t.Errorf("unexpected error fields: %+v", nf)
	}

	e.SetFitted()
	if err := e.RequireFitted("Model", "Predict"); err != nil {
		t.Fatalf("fitted estimator returned %v", err)
	}

	e.Reset()
	if e.IsFitted() {
		t.Error("Reset must return to NotFitted")
	}
}
