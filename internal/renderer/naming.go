package renderer

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// DefaultFileNameFormat names a receipt after its date.
const DefaultFileNameFormat = "receipt_{date}.pdf"

// fileNameReplacer replaces filesystem-unsafe characters. Separators become
// dashes so "2024/06/08" reads as "2024-06-08".
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	" ", "-",
	"\t", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName makes a value safe to embed in a file name.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.Trim(fileNameReplacer.Replace(name), ".-")
}

// ArtifactName expands format for rec. Supported placeholders are {date},
// {customer_id} and {uuid}. The same record always yields the same name
// unless {uuid} is used.
func ArtifactName(format string, rec *types.TransactionRecord) (string, error) {
	if format == "" {
		format = DefaultFileNameFormat
	}

	date := SanitizeFileName(rec.Date)
	if date == "" && strings.Contains(format, "{date}") {
		return "", errors.New("record date is empty")
	}

	name := strings.NewReplacer(
		"{date}", date,
		"{customer_id}", SanitizeFileName(rec.CustomerID),
		"{uuid}", uuid.NewString(),
	).Replace(format)

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.New("artifact name is not a plain file name: " + name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}
