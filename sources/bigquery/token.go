package bigquery

import (
	"errors"
	"strings"
)

// pageRef locates a page of query results: the job and BigQuery's own row
// token within it.
type pageRef struct {
	jobID    string
	location string
	rows     string
}

// Job ids and locations never contain '|', so only the row token may.
const tokenSep = "|"

var errBadPageToken = errors.New("bigquery: malformed page token")

func formatPageToken(ref pageRef) string {
	return ref.jobID + tokenSep + ref.location + tokenSep + ref.rows
}

func parsePageToken(token string) (pageRef, error) {
	parts := strings.SplitN(token, tokenSep, 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return pageRef{}, errBadPageToken
	}
	return pageRef{jobID: parts[0], location: parts[1], rows: parts[2]}, nil
}
