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


package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest upload accepted for ingestion.
const MaxFileSize = 50 * 1024 * 1024 // 50MB

// supportedTypes maps file extensions to document types.
var supportedTypes = map[string]string{
	".pdf":  "pdf",
	".txt":  "txt",
	".json": "json",
	".md":   "md",
}

// FileInfo describes a validated upload.
type FileInfo struct {
	Filename     string
	DocumentType string
	Size         int
	Hash         string // BLAKE2b-256 hash of the raw file content
}

// ValidateFile checks an upload against the supported-type allowlist and size
// limits and computes its content hash. It never inspects more than the raw
// bytes; text extraction happens later in the pipeline.
func ValidateFile(data []byte, filename string) (*FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	docType, ok := supportedTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedType, ext, strings.Join(SupportedTypes(), ", "))
	}

	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), MaxFileSize)
	}

	return &FileInfo{
		Filename:     filename,
		DocumentType: docType,
		Size:         len(data),
		Hash:         HashContent(data),
	}, nil
}

// ValidateContent checks extracted text content for a given document type.
func ValidateContent(content, docType string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if docType == "json" && !json.Valid([]byte(content)) {
		return ErrMalformedJSON
	}
	return nil
}

// SupportedTypes returns the accepted document types in stable order.
func SupportedTypes() []string {
	return []string{"json", "md", "pdf", "txt"}
}

// SanitizeMetadata returns a copy of metadata with empty keys and values
// removed. Reserved keys (document identity fields) are preserved as-is; the
// caller is responsible for setting them after sanitization so user metadata
// cannot shadow them.
func SanitizeMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return map[string]string{}
	}
	sanitized := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == "" || v == "" {
			continue
		}
		sanitized[k] = v
	}
	return sanitized
}
