package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 100, 3, 1)

	want := "scibench: Predict: dimension mismatch on axis 1 (features). Expected 100, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 100 || dimErr.Got != 3 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("HistGradientBoostingRegressor", "Predict")

	want := "scibench: HistGradientBoostingRegressor: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValueError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		message string
		wantMsg string
	}{
		{
			name:    "nil input",
			op:      "Compute",
			message: "input matrix is nil",
			wantMsg: "scibench: Compute: input matrix is nil",
		},
		{
			name:    "empty vector",
			op:      "MSE",
			message: "empty vector",
			wantMsg: "scibench: MSE: empty vector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValueError(tt.op, tt.message)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var valErr *ValueError
			if !As(err, &valErr) {
				t.Error("Error should be castable to *ValueError")
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("size", "must be positive", 0)

	want := "scibench: validation failed for parameter 'size': must be positive (got: 0)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	warn := NewConvergenceWarning("HistGradientBoostingRegressor", 100, "validation loss still improving")

	want := "HistGradientBoostingRegressor failed to converge after 100 iterations: validation loss still improving"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Warn().EmbedObject(warn).Msg("warning")
	if !strings.Contains(buf.String(), `"type":"ConvergenceWarning"`) {
		t.Errorf("zerolog output missing type field: %s", buf.String())
	}
}

func TestWarnUsesHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	Warn(NewConvergenceWarning("algo", 1, ""))
	if len(got) != 1 {
		t.Fatalf("expected 1 handled warning, got %d", len(got))
	}
}

func TestWrapfAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: got %d rows", "Fit", 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Fit: got 0 rows") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("ok", []float64{1, 2, 3}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("grad", []float64{1, math.NaN(), math.Inf(1)}, 7)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 || numErr.Iteration != 7 {
		t.Errorf("unexpected error fields: %+v", numErr)
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("loss", 0.5, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckScalar("loss", math.Inf(-1), 1); err == nil {
		t.Fatal("expected error for -Inf")
	}
}

func TestCheckMatrix(t *testing.T) {
	clean := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("fit", clean, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dirty := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})
	if err := CheckMatrix("fit", dirty, 0); err == nil {
		t.Fatal("expected error for NaN entry")
	}

	if err := CheckMatrix("fit", &mat.Dense{}, 0); err != nil {
		t.Fatalf("empty matrix should pass, got %v", err)
	}
}
