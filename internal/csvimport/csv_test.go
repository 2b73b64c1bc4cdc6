package csvimport

import (
	"errors"
	"strings"
	"testing"

	"ruleta-service/internal/domain"
)

func TestParseClassicNumberedRows(t *testing.T) {
	input := "pregunta,respuesta\n" +
		"\"1. El agua hierve a 100 grados al nivel del mar\",\"Verdadero. A presión normal.\"\n" +
		"\"2. La luna tiene luz propia\",\"FALSO\"\n" +
		"sin numero,VERDADERO\n" +
		"\"3. Fila incompleta\"\n"

	result, err := ParseClassic(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}
	if result.Omitted != 2 {
		t.Fatalf("expected 2 omitted rows, got %d", result.Omitted)
	}
	first := result.Questions[0]
	if first.ID != 1 || first.Frase != "El agua hierve a 100 grados al nivel del mar" || !first.Verdadero {
		t.Fatalf("unexpected first question %+v", first)
	}
	if first.Respuesta != "Verdadero. A presión normal." {
		t.Fatalf("answer text should be kept verbatim, got %q", first.Respuesta)
	}
	if result.Questions[1].Verdadero {
		t.Fatalf("expected second question to be false")
	}
}

func TestParseClassicThreeColumns(t *testing.T) {
	input := "id,frase,respuesta\n10,Madrid es la capital de España,VERDADERO\n"
	result, err := ParseClassic(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Questions) != 1 || result.Questions[0].ID != 10 {
		t.Fatalf("unexpected questions %+v", result.Questions)
	}
}

func TestParseClassicRejectsInvalidAnswer(t *testing.T) {
	input := "pregunta,respuesta\n\"1. Uno\",\"VERDADERO\"\n\"2. Dos\",\"Tal vez\"\n"
	_, err := ParseClassic(strings.NewReader(input))
	var importErr *domain.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("expected import error, got %v", err)
	}
	if importErr.Line != 3 {
		t.Fatalf("expected failure on line 3, got %d", importErr.Line)
	}
	if !errors.Is(err, domain.ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV in chain")
	}
}

func TestParseClassicRejectsDuplicateID(t *testing.T) {
	input := "pregunta,respuesta\n\"1. Uno\",\"VERDADERO\"\n\"1. Otra\",\"FALSO\"\n"
	if _, err := ParseClassic(strings.NewReader(input)); !errors.Is(err, domain.ErrInvalidCSV) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestParseClassicStripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfpregunta,respuesta\n\"4. Cuatro\",\"FALSO\"\n"
	result, err := ParseClassic(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Questions) != 1 || result.Questions[0].ID != 4 {
		t.Fatalf("unexpected questions %+v", result.Questions)
	}
}

func TestParseSelf(t *testing.T) {
	input := "pregunta,respuesta\n¿Capital de Francia?,París\n , vacía\n¿2+2?, 4 \nsolo una columna\n"
	result, err := ParseSelf(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 cards, got %+v", result.Questions)
	}
	if result.Questions[1].Respuesta != "4" {
		t.Fatalf("expected trimmed answer, got %q", result.Questions[1].Respuesta)
	}
	if result.Omitted != 2 {
		t.Fatalf("expected 2 omitted rows, got %d", result.Omitted)
	}
}

func TestCheckFilename(t *testing.T) {
	if err := CheckFilename("preguntas.CSV"); err != nil {
		t.Fatalf("expected csv accepted, got %v", err)
	}
	if err := CheckFilename("preguntas.xlsx"); !errors.Is(err, domain.ErrInvalidFile) {
		t.Fatalf("expected invalid file, got %v", err)
	}
}
