package reservation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/azero-id/azns-toolkit/internal/domain"
)

var (
	ErrEmptyName      = errors.New("empty name")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrNameNotAllowed = errors.New("name not allowed")
	ErrTooManyColumns = errors.New("too many columns")
)

type (
	nameChecker interface {
		IsNameAllowed(name string) error
	}

	// Parser reads reservation lists. Each row is `name[,address]`; rows without an
	// address reserve the name for the default account.
	Parser struct {
		tld     string
		checker nameChecker
	}
)

// NewParser creates a parser. checker may be nil to skip name validation.
func NewParser(tld string, checker nameChecker) *Parser {
	return &Parser{
		tld:     tld,
		checker: checker,
	}
}

func (p *Parser) ParseFile(path string) ([]domain.Reservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reservations file: %w", err)
	}
	defer f.Close()

	reservations, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reservations, nil
}

// Parse validates every row and returns all problems at once.
func (p *Parser) Parse(r io.Reader) ([]domain.Reservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var (
		reservations []domain.Reservation
		errs         []error
		seen         = make(map[string]int)
		first        = true
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "name") {
				continue
			}
		}

		reservation, err := p.parseRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		if prev, ok := seen[reservation.Name]; ok {
			errs = append(errs, fmt.Errorf("row %d: %w: %q first seen on row %d", line, ErrDuplicateName, reservation.Name, prev))
			continue
		}
		seen[reservation.Name] = line

		reservations = append(reservations, reservation)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reservations, nil
}

func (p *Parser) parseRecord(record []string) (domain.Reservation, error) {
	if len(record) > 2 {
		return domain.Reservation{}, fmt.Errorf("%w: %d", ErrTooManyColumns, len(record))
	}

	name := domain.SanitizeName(record[0], p.tld)
	if name == "" {
		return domain.Reservation{}, ErrEmptyName
	}
	if p.checker != nil {
		if err := p.checker.IsNameAllowed(name); err != nil {
			return domain.Reservation{}, fmt.Errorf("%w: %q: %w", ErrNameNotAllowed, name, err)
		}
	}

	reservation := domain.Reservation{Name: name}
	if len(record) == 2 {
		if address := strings.TrimSpace(record[1]); address != "" {
			account, err := domain.ParseAccountID(address)
			if err != nil {
				return domain.Reservation{}, fmt.Errorf("%q: %w", name, err)
			}
			reservation.Address = &account
		}
	}

	return reservation, nil
}
