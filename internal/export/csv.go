package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"pomodoro/zenpomo/internal/model"
)

func WriteCSV(w io.Writer, records []model.CompletionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		if err := cw.Write(row(record)); err != nil {
			return fmt.Errorf("write csv row %s: %w", record.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
