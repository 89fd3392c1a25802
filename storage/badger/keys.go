package badger

import "fmt"

// Key prefixes for different data types
const (
	vectorRecordPrefix = "vecrec"
	documentPrefix     = "vecdoc"
)

// makeRecordKey generates a key for a vector record by ID.
func makeRecordKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorRecordPrefix, id))
}

// makeDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:recordID
func makeDocumentKey(documentID, recordID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentPrefix, documentID, recordID))
}

// makePartialDocumentKey generates a prefix covering all records of a
// document. The trailing separator keeps "doc-1" from matching "doc-10".
func makePartialDocumentKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentPrefix, documentID))
}
