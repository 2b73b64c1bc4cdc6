package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ruleta-service/internal/domain"
)

func TestImportCommandInMemory(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "tarjetas.csv")
	content := "frase,respuesta\nCapital de Chile,Santiago\nCapital de Perú,Lima\n,sin frase\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"importar", csvPath, "--autoevaluacion", "--modo", "reemplazar", "--config", filepath.Join(dir, "missing.yaml")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var summary domain.ImportSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if summary.Importadas != 2 || summary.Omitidas != 1 || summary.Modo != domain.ImportReplace {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestImportCommandRejectsMode(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"importar", filepath.Join(dir, "x.csv"), "--modo", "borrar", "--config", filepath.Join(dir, "missing.yaml")})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}
