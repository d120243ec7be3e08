package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/younsl/volreaper/internal/models"
	"github.com/younsl/volreaper/pkg/utils"
)

// InventoryHeader is the fixed header row of an inventory report
var InventoryHeader = []string{"Volume ID", "State", "CreateTime", "Unattached Since", "Tags"}

// ErrMalformedReport is returned when an inventory report cannot be parsed
var ErrMalformedReport = errors.New("malformed inventory report")

// WriteInventory writes rows as CSV with the inventory header
func WriteInventory(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InventoryHeader); err != nil {
		return fmt.Errorf("error writing inventory header: %w", err)
	}

	for _, row := range rows {
		tags, err := EncodeTags(row.Tags)
		if err != nil {
			return fmt.Errorf("error encoding tags for %s: %w", row.VolumeID, err)
		}
		record := []string{row.VolumeID, row.State, row.CreateDate, row.UnattachedSince, tags}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing inventory row for %s: %w", row.VolumeID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadInventory parses a report written by WriteInventory.
// Any malformed line fails the whole read so no decision is made on partial data.
func ReadInventory(r io.Reader) ([]models.ReportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(InventoryHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedReport)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if !slices.Equal(header, InventoryHeader) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedReport, header)
	}

	var rows []models.ReportRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
		}

		line, _ := cr.FieldPos(0)
		row, err := parseInventoryRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseInventoryRecord(record []string) (models.ReportRow, error) {
	row := models.ReportRow{
		VolumeID:        record[0],
		State:           record[1],
		CreateDate:      record[2],
		UnattachedSince: record[3],
	}
	if row.VolumeID == "" {
		return row, errors.New("empty volume id")
	}
	if row.State == "" {
		return row, fmt.Errorf("empty state for %s", row.VolumeID)
	}
	if row.UnattachedSince != "" {
		if _, err := utils.ParseDate(row.UnattachedSince); err != nil {
			return row, fmt.Errorf("volume %s: %w", row.VolumeID, err)
		}
	}

	tags, err := DecodeTags(record[4])
	if err != nil {
		return row, fmt.Errorf("volume %s: %w", row.VolumeID, err)
	}
	row.Tags = tags
	return row, nil
}
