// Package export renders session records for external consumption.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vburojevic/obcall/internal/domain"
)

// Header is the first CSV row.
var Header = []string{"Name", "Value"}

// CSV renders rec as UTF-8 CSV with a Name,Value header and one row per
// status field. ok is false and no bytes are produced when rec is nil.
func CSV(rec *domain.Record) (data []byte, ok bool) {
	if rec == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// Write streams the CSV form of rec to w.
func Write(w io.Writer, rec *domain.Record) error {
	if rec == nil {
		return fmt.Errorf("nothing to export")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, f := range rec.Fields {
		if err := cw.Write([]string{f.Name, f.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the suggested download name for rec.
func Filename(rec *domain.Record) string {
	if rec == nil || rec.ContactID == "" {
		return "contact_data.csv"
	}
	return fmt.Sprintf("contact_%s.csv", rec.ContactID)
}
