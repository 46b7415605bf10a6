// Package csvfile reads raw rating records from CSV partition files.
//
// Each partition is a user_id,item_id,rating,timestamp file as exported by
// the source feed, one partition per product category; the partition's
// category label is attached to every record read from it. Malformed rows
// (wrong arity, non-numeric rating or timestamp, rating outside [1,5]) are
// rejected here, before the records reach the transformation pipeline.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ratingworks/ratings-pipeline/internal/datasources"
	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

const ratingFieldCount = 4

// Partition is one CSV file of raw ratings belonging to a single category.
type Partition struct {
	Path     string
	Category string
}

// ParsePartitionSpec parses a comma-separated partition list of the form
// "Books=books.csv,Music=music.csv". An entry without a label uses the file
// name without extension as its category.
func ParsePartitionSpec(spec string) ([]Partition, error) {
	var partitions []Partition
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		category, path, labelled := strings.Cut(entry, "=")
		if !labelled {
			path = entry
			category = strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
		}
		if strings.TrimSpace(path) == "" || strings.TrimSpace(category) == "" {
			return nil, fmt.Errorf("invalid partition entry [%s]", entry)
		}

		partitions = append(partitions, Partition{
			Path:     strings.TrimSpace(path),
			Category: strings.TrimSpace(category),
		})
	}

	if len(partitions) == 0 {
		return nil, errors.New("partition spec contains no partitions")
	}
	return partitions, nil
}

// Reader loads raw ratings from a set of CSV partitions.
type Reader struct {
	partitions []Partition
}

var _ datasources.RawRatingReader = (*Reader)(nil)

func New(partitions []Partition) *Reader {
	return &Reader{partitions: partitions}
}

// ReadRawRatings reads every partition in order and returns the concatenated
// record set. Rejected rows are counted and logged per partition rather than
// failing the read.
func (r *Reader) ReadRawRatings(ctx context.Context) ([]domain.RawRating, error) {
	logger := domain.LoggerFromContext(ctx)

	var records []domain.RawRating
	for _, partition := range r.partitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loaded, rejected, err := readPartition(partition)
		if err != nil {
			return nil, fmt.Errorf("reading partition %s: %w", partition.Path, err)
		}

		logger.InfoContext(ctx, "loaded ratings partition",
			"path", partition.Path,
			"category", partition.Category,
			"rows", len(loaded),
			"rejected_rows", rejected,
		)
		records = append(records, loaded...)
	}

	return records, nil
}

func readPartition(partition Partition) ([]domain.RawRating, int, error) {
	file, err := os.Open(partition.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening partition file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // arity is validated per row so rejects can be counted
	reader.TrimLeadingSpace = true

	var records []domain.RawRating
	var rejected int

	for row := 0; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading row %d: %w", row, err)
		}

		record, ok := parseRow(fields, partition.Category)
		if !ok {
			if row == 0 {
				// Exported partitions sometimes carry a header row.
				continue
			}
			rejected++
			continue
		}
		records = append(records, record)
	}

	return records, rejected, nil
}

func parseRow(fields []string, category string) (domain.RawRating, bool) {
	if len(fields) != ratingFieldCount {
		return domain.RawRating{}, false
	}

	userID := strings.TrimSpace(fields[0])
	itemID := strings.TrimSpace(fields[1])
	if userID == "" || itemID == "" {
		return domain.RawRating{}, false
	}

	rating, ok := coerceRating(strings.TrimSpace(fields[2]))
	if !ok {
		return domain.RawRating{}, false
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
	if err != nil {
		return domain.RawRating{}, false
	}

	return domain.RawRating{
		UserID:    userID,
		ItemID:    itemID,
		Rating:    rating,
		Timestamp: timestamp,
		Category:  category,
	}, true
}

// coerceRating accepts integer ratings and integral floats ("5.0"), which
// some source exports use, and enforces the [1,5] scale.
func coerceRating(s string) (int, bool) {
	rating, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, false
		}
		rating = int(f)
	}
	if rating < 1 || rating > 5 {
		return 0, false
	}
	return rating, true
}
