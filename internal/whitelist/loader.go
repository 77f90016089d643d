package whitelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/azero-id/azns-toolkit/internal/domain"
)

var (
	ErrDuplicateAccount = errors.New("duplicate account")
	ErrEmptyWhitelist   = errors.New("whitelist is empty")
)

// LoadFile reads a whitelist from path. See Load.
func LoadFile(path string) ([]domain.WhitelistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open whitelist: %w", err)
	}
	defer f.Close()

	entries, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Load reads one address per line. Blank lines and lines starting with # are skipped.
// Every invalid or repeated address is reported.
func Load(r io.Reader) ([]domain.WhitelistEntry, error) {
	var (
		entries []domain.WhitelistEntry
		errs    []error
		seen    = make(map[domain.AccountID]int)
		scanner = bufio.NewScanner(r)
		line    = 0
	)

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		account, err := domain.ParseAccountID(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if prev, ok := seen[account]; ok {
			errs = append(errs, fmt.Errorf("line %d: %w: %s first seen on line %d", line, ErrDuplicateAccount, account, prev))
			continue
		}
		seen[account] = line

		entries = append(entries, domain.WhitelistEntry{Account: account, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read whitelist: %w", err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyWhitelist
	}
	return entries, nil
}
