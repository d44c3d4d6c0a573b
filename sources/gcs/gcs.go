// Package gcs pages through Cloud Storage buckets and objects.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/Konsultn-Engineering/bqlab/paging"
	"github.com/Konsultn-Engineering/bqlab/sources"
)

// objectAttrs are the attributes requested for each listed object.
var objectAttrs = []string{"Name", "Size", "ContentType", "Updated", "Generation"}

// Buckets lists the buckets of project.
func Buckets(client *storage.Client, project string, pageSize int) paging.FetchFunc[*storage.BucketAttrs] {
	return sources.FromPageable[*storage.BucketAttrs](func(ctx context.Context) (iterator.Pageable, error) {
		if project == "" {
			return nil, fmt.Errorf("gcs: project is required to list buckets")
		}
		return client.Buckets(ctx, project), nil
	}, pageSize)
}

// Objects lists the objects of bucket whose names start with prefix.
// Directory-like prefixes are collapsed when delimiter is set; they show
// up as entries with only Prefix filled in.
func Objects(bucket *storage.BucketHandle, prefix, delimiter string, pageSize int) paging.FetchFunc[*storage.ObjectAttrs] {
	return sources.FromPageable[*storage.ObjectAttrs](func(ctx context.Context) (iterator.Pageable, error) {
		q := &storage.Query{Prefix: prefix, Delimiter: delimiter}
		if err := q.SetAttrSelection(objectAttrs); err != nil {
			return nil, err
		}
		return bucket.Objects(ctx, q), nil
	}, pageSize)
}
