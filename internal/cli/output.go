package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	apperrors "pomodoro/zenpomo/internal/errors"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeError prints err for a person, or as a JSON error envelope.
func writeError(w io.Writer, err error, asJSON bool) {
	var engineErr *apperrors.EngineError
	if !errors.As(err, &engineErr) {
		engineErr = &apperrors.EngineError{
			Kind:    apperrors.KindInternal,
			Code:    "internal_error",
			Message: err.Error(),
		}
	}

	if !asJSON {
		fmt.Fprintf(w, "error: %s\n", err)
		return
	}

	errorBody := map[string]interface{}{
		"code":    engineErr.Code,
		"message": engineErr.Error(),
	}
	if engineErr.Details != nil {
		errorBody["details"] = engineErr.Details
	}
	_ = printJSON(w, map[string]interface{}{"error": errorBody})
}
