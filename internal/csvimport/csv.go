// Package csvimport turns uploaded question files into domain questions.
//
// Every file starts with a header row, which is skipped. Parsing finishes
// before anything is written, so a rejected file never leaves a partial import.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"ruleta-service/internal/domain"
)

var numberedPhrase = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

var utf8BOM = []byte("\xef\xbb\xbf")

// ClassicResult holds the questions of a classic file.
type ClassicResult struct {
	Questions []domain.Question
	Omitted   int
}

// SelfResult holds the flash cards of a self-assessment file.
type SelfResult struct {
	Questions []domain.SelfQuestion
	Omitted   int
}

// CheckFilename rejects anything that is not named *.csv.
func CheckFilename(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return domain.ErrInvalidFile
	}
	return nil
}

// ParseClassic reads rows shaped either as `"N. phrase","answer"` or as
// `id,phrase,answer`. The answer must start with VERDADERO or FALSO.
func ParseClassic(r io.Reader) (ClassicResult, error) {
	var result ClassicResult
	seen := make(map[int64]int)

	err := eachRow(r, func(line int, row []string) error {
		id, frase, respuesta, ok := classicFields(row)
		if !ok {
			result.Omitted++
			return nil
		}
		verdadero, valid := domain.ParseTruth(respuesta)
		if !valid {
			return &domain.ImportError{Line: line, Reason: fmt.Sprintf("respuesta inválida %q", respuesta)}
		}
		if prev, dup := seen[id]; dup {
			return &domain.ImportError{Line: line, Reason: fmt.Sprintf("id %d repetido (ya usado en la línea %d)", id, prev)}
		}
		seen[id] = line
		result.Questions = append(result.Questions, domain.Question{
			ID:        id,
			Frase:     frase,
			Respuesta: respuesta,
			Verdadero: verdadero,
		})
		return nil
	})
	if err != nil {
		return ClassicResult{}, err
	}
	return result, nil
}

// ParseSelf reads `phrase,answer` rows. Rows missing either field are omitted.
func ParseSelf(r io.Reader) (SelfResult, error) {
	var result SelfResult
	err := eachRow(r, func(_ int, row []string) error {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			result.Omitted++
			return nil
		}
		result.Questions = append(result.Questions, domain.SelfQuestion{
			Frase:     row[0],
			Respuesta: row[1],
		})
		return nil
	})
	if err != nil {
		return SelfResult{}, err
	}
	return result, nil
}

func classicFields(row []string) (int64, string, string, bool) {
	if len(row) < 2 {
		return 0, "", "", false
	}
	if m := numberedPhrase.FindStringSubmatch(row[0]); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, "", "", false
		}
		frase := strings.TrimSpace(m[2])
		return id, frase, row[1], frase != "" && row[1] != ""
	}
	if len(row) >= 3 {
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return 0, "", "", false
		}
		return id, row[1], row[2], row[1] != "" && row[2] != ""
	}
	return 0, "", "", false
}

// eachRow calls fn for every data row with trimmed fields and its 1-based line.
func eachRow(r io.Reader, fn func(line int, row []string) error) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for i := 0; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return &domain.ImportError{Line: parseErr.Line, Reason: parseErr.Err.Error()}
			}
			return fmt.Errorf("read csv: %w", err)
		}
		if i == 0 {
			continue
		}
		line, _ := reader.FieldPos(0)
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}
