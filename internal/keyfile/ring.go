// Package keyfile turns key-file text into a deduplicated set of wallet records.
//
// Three layouts are accepted: flat (one value per line), separate
// "PRIVATE KEYS:" / "WALLET ADDRESSES:" sections, and a paired
// "PRIVATE KEYS / ADDRESS:" section with "secret address" per line.
package keyfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AlexZinkM/rent-collector/internal/model"

	"go.uber.org/zap"
)

// Section markers of the structured layout.
const (
	SectionSecrets   = "PRIVATE KEYS:"
	SectionAddresses = "WALLET ADDRESSES:"
	SectionPairs     = "PRIVATE KEYS / ADDRESS:"
)

// ParseError is a secret candidate that could not be decoded.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid private key: %v", e.Source, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadReport describes what a single Load added to the ring.
type LoadReport struct {
	Source          string
	Added           int
	Duplicates      int
	ParseErrors     []*ParseError
	OrphanAddresses int // public ids without a matching secret
	Total           int // records in the ring after the load
}

type candidate struct {
	value string
	line  int
}

// Ring accumulates key records across loads. Loads are additive; only Clear removes records.
type Ring struct {
	mu      sync.Mutex
	records []*model.KeyRecord
	index   map[string]struct{}
	logger  *zap.Logger
}

// NewRing creates an empty ring.
func NewRing(logger *zap.Logger) *Ring {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ring{
		index:  make(map[string]struct{}),
		logger: logger,
	}
}

// Load parses text and adds every new, valid secret to the ring.
// A bad secret is logged and skipped; it never fails the load.
func (r *Ring) Load(text, source string) LoadReport {
	secrets, addresses := scan(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	report := LoadReport{Source: source}
	for _, c := range secrets {
		key, err := ParseSecret(c.value)
		if err != nil {
			perr := &ParseError{Source: source, Line: c.line, Err: err}
			report.ParseErrors = append(report.ParseErrors, perr)
			r.logger.Warn("skipping invalid private key",
				zap.String("source", source),
				zap.Int("line", c.line),
				zap.Error(err))
			continue
		}

		record := model.NewKeyRecord(key)
		id := record.PublicKey.String()
		if _, ok := r.index[id]; ok {
			report.Duplicates++
			continue
		}
		r.index[id] = struct{}{}
		r.records = append(r.records, record)
		report.Added++
	}

	for _, c := range addresses {
		if _, ok := r.index[c.value]; !ok {
			report.OrphanAddresses++
		}
	}
	if report.OrphanAddresses > 0 {
		r.logger.Info("public keys without private keys will be skipped",
			zap.String("source", source),
			zap.Int("count", report.OrphanAddresses))
	}

	report.Total = len(r.records)
	r.logger.Info("loaded wallets",
		zap.String("source", source),
		zap.Int("added", report.Added),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("parse_errors", len(report.ParseErrors)),
		zap.Int("total", report.Total))
	return report
}

// LoadFile reads a key file from disk and loads it, labelled by its base name.
func (r *Ring) LoadFile(path string) (LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadReport{}, fmt.Errorf("failed to read key file: %w", err)
	}
	defer clear(data)
	return r.Load(string(data), filepath.Base(path)), nil
}

// Records returns the loaded records in load order.
func (r *Ring) Records() []*model.KeyRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.KeyRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of loaded records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Clear drops every loaded record and wipes the secrets.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		clear(rec.Secret)
	}
	r.records = nil
	r.index = make(map[string]struct{})
}

// scan splits text into secret and address candidates.
func scan(text string) (secrets, addresses []candidate) {
	structured := strings.Contains(text, SectionSecrets) ||
		strings.Contains(text, SectionAddresses) ||
		strings.Contains(text, SectionPairs)

	section := ""
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1
		if line == "" || isComment(line) {
			continue
		}

		if !structured {
			switch Classify(line) {
			case KindSecret:
				secrets = append(secrets, candidate{line, lineNo})
			case KindPublicID:
				addresses = append(addresses, candidate{line, lineNo})
			}
			continue
		}

		switch line {
		case SectionSecrets, SectionAddresses, SectionPairs:
			section = line
			continue
		}

		switch section {
		case SectionSecrets:
			if Classify(line) == KindSecret {
				secrets = append(secrets, candidate{line, lineNo})
			}
		case SectionAddresses:
			if Classify(line) == KindPublicID {
				addresses = append(addresses, candidate{line, lineNo})
			}
		case SectionPairs:
			parts := strings.Fields(line)
			if len(parts) < 2 {
				continue
			}
			if Classify(parts[0]) == KindSecret {
				secrets = append(secrets, candidate{parts[0], lineNo})
			}
			if Classify(parts[1]) == KindPublicID {
				addresses = append(addresses, candidate{parts[1], lineNo})
			}
		}
	}
	return secrets, addresses
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}
