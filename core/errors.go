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

import "errors"

// Document validation errors. All of them indicate bad caller input and must
// never be retried.
var (
	// ErrUnsupportedType indicates the file's type is not in the supported set.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrEmptyFile indicates a zero-length upload.
	ErrEmptyFile = errors.New("file is empty")

	// ErrFileTooLarge indicates the upload exceeds the maximum allowed size.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrEmptyContent indicates the extracted text is empty or whitespace only.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMalformedJSON indicates a JSON document that does not parse.
	ErrMalformedJSON = errors.New("malformed JSON content")
)
