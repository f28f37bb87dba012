package tableview

import (
	"encoding/csv"
	"io"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// ExportCSV writes the displayed rows with a header of effective labels.
// The actions column is left out.
func (c *Controller) ExportCSV(w io.Writer) error {
	var cols []string
	for _, id := range c.VisibleColumns() {
		if id != ActionsColumn {
			cols = append(cols, id)
		}
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, id := range cols {
		header[i] = c.Label(id)
	}
	if err := cw.Write(header); err != nil {
		return trackerrors.NewSaveError("write csv header", err)
	}
	for _, r := range c.DisplayedRows() {
		record := make([]string, len(cols))
		for i, id := range cols {
			record[i] = c.Text(r, id)
		}
		if err := cw.Write(record); err != nil {
			return trackerrors.NewSaveError("write csv row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return trackerrors.NewSaveError("flush csv", err)
	}
	return nil
}
