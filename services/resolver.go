package services

import "strings"

// ResolveDocuments determines which of the available documents the
// question refers to. A document counts as mentioned when any lowercase
// candidate form of its name appears as a substring of the question:
// the name as-is, the name with its .pdf/.txt suffix stripped, and the
// stripped form with underscores or hyphens replaced by spaces.
//
// available must be deterministically ordered by the caller; the first
// mentioned document is the one used for retrieval downstream.
func ResolveDocuments(question string, available []string) []string {
	questionLower := strings.ToLower(question)

	var mentioned []string
	for _, docName := range available {
		nameLower := strings.ToLower(docName)
		stripped := strings.TrimSuffix(strings.TrimSuffix(nameLower, ".pdf"), ".txt")

		candidates := []string{
			nameLower,
			stripped,
			strings.ReplaceAll(stripped, "_", " "),
			strings.ReplaceAll(stripped, "-", " "),
		}

		for _, candidate := range candidates {
			if candidate != "" && strings.Contains(questionLower, candidate) {
				mentioned = append(mentioned, docName)
				break
			}
		}
	}
	return mentioned
}
