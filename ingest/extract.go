// Copyright 2026 Quillstack Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/quillstack/sift/core"
)

// ExtractText converts raw file bytes into plain text according to the
// document type established during validation.
func ExtractText(data []byte, info *core.FileInfo) (string, error) {
	switch info.DocumentType {
	case "txt", "md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrExtraction, info.Filename)
		}
		return string(data), nil
	case "json":
		return extractJSON(data, info.Filename)
	case "pdf":
		return extractPDF(data, info.Filename)
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedType, info.DocumentType)
	}
}

// extractJSON re-indents the document so chunk boundaries fall on structural
// lines rather than arbitrary positions in a minified blob.
func extractJSON(data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %s: %v", core.ErrMalformedJSON, filename, err)
	}
	return buf.String(), nil
}

func extractPDF(data []byte, filename string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, filename, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: %s page %d: %v", ErrExtraction, filename, pageNum, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
