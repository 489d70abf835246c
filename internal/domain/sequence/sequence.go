// Package sequence owns the official numbering of business records:
// document types, their prefixes and reset policy, number formatting,
// parsing (including the legacy compact formats) and validation.
package sequence

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Type identifies a numbered record family
type Type string

const (
	TypeFacture        Type = "FACTURE"
	TypeFactureAcompte Type = "FACTURE_ACOMPTE"
	TypeDevis          Type = "DEVIS"
	TypeBonCommande    Type = "BON_COMMANDE"
	TypeBonLivraison   Type = "BON_LIVRAISON"
	TypePVReception    Type = "PV_RECEPTION"
	TypeAvoir          Type = "AVOIR"
	TypeClient         Type = "CLIENT"
	TypeLead           Type = "LEAD"
	TypeProject        Type = "PROJECT"
	TypePayment        Type = "PAYMENT"
	TypeOrder          Type = "ORDER"
	TypeQuote          Type = "QUOTE"
)

// ResetPolicy tells when a counter starts over
type ResetPolicy string

const (
	ResetYearly     ResetPolicy = "YEARLY"
	ResetContinuous ResetPolicy = "CONTINUOUS"
)

// Config describes how numbers of a type are built
type Config struct {
	Prefix    string
	Reset     ResetPolicy
	PadLength int
}

var configs = map[Type]Config{
	TypeFacture:        {Prefix: "FAC", Reset: ResetYearly, PadLength: 6},
	TypeFactureAcompte: {Prefix: "FAAC", Reset: ResetYearly, PadLength: 6},
	TypeDevis:          {Prefix: "DEV", Reset: ResetYearly, PadLength: 6},
	TypeBonCommande:    {Prefix: "BC", Reset: ResetYearly, PadLength: 6},
	TypeBonLivraison:   {Prefix: "BL", Reset: ResetYearly, PadLength: 6},
	TypePVReception:    {Prefix: "PV", Reset: ResetYearly, PadLength: 6},
	TypeAvoir:          {Prefix: "AV", Reset: ResetYearly, PadLength: 6},
	TypeClient:         {Prefix: "CLI", Reset: ResetContinuous, PadLength: 6},
	TypeLead:           {Prefix: "L", Reset: ResetYearly, PadLength: 6},
	TypeProject:        {Prefix: "PRJ", Reset: ResetYearly, PadLength: 6},
	TypePayment:        {Prefix: "PAY", Reset: ResetYearly, PadLength: 6},
	TypeOrder:          {Prefix: "ORD", Reset: ResetYearly, PadLength: 4},
	TypeQuote:          {Prefix: "QT", Reset: ResetYearly, PadLength: 4},
}

// Legacy compact numbers (no dashes) issued before the readable format
var legacyPrefixes = []struct {
	prefix string
	typ    Type
}{
	// longest prefixes first so FTB wins over FA and CLI over L
	{"FTB", TypeFacture},
	{"RFT", TypePVReception},
	{"CLI", TypeClient},
	{"PRJ", TypeProject},
	{"FA", TypeFactureAcompte},
	{"BC", TypeBonCommande},
	{"BL", TypeBonLivraison},
	{"AV", TypeAvoir},
	{"D", TypeDevis},
	{"L", TypeLead},
}

// Error codes raised by numbering
const (
	CodeUnknownType        = "UNKNOWN_TYPE"
	CodeSequenceConflict   = "SEQUENCE_CONFLICT"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// ErrSequenceConflict is returned by stores when a concurrent increment won
var ErrSequenceConflict = shared.NewDomainError(CodeSequenceConflict, "Conflit de séquence, veuillez réessayer")

// AllTypes returns every numbered type in a stable order
func AllTypes() []Type {
	return []Type{
		TypeFacture, TypeFactureAcompte, TypeDevis, TypeBonCommande, TypeBonLivraison,
		TypePVReception, TypeAvoir, TypeClient, TypeLead, TypeProject, TypePayment,
		TypeOrder, TypeQuote,
	}
}

// ConfigFor returns the numbering configuration of a type
func ConfigFor(t Type) (Config, error) {
	cfg, ok := configs[t]
	if !ok {
		return Config{}, shared.NewDomainErrorf(CodeUnknownType, "Type de numérotation inconnu : %s", t)
	}
	return cfg, nil
}

// IsValid reports whether t is a known numbered type
func (t Type) IsValid() bool {
	_, ok := configs[t]
	return ok
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// CounterYear returns the year component of the counter key for a date.
// Continuous counters share year 0.
func CounterYear(t Type, at time.Time) (int, error) {
	cfg, err := ConfigFor(t)
	if err != nil {
		return 0, err
	}
	if cfg.Reset == ResetContinuous {
		return 0, nil
	}
	return at.Year(), nil
}

// Format builds the official number for a counter value
func Format(t Type, year int, seq int64) (string, error) {
	cfg, err := ConfigFor(t)
	if err != nil {
		return "", err
	}
	var number string
	if cfg.Reset == ResetContinuous {
		number = fmt.Sprintf("%s-%0*d", cfg.Prefix, cfg.PadLength, seq)
	} else {
		number = fmt.Sprintf("%s-%04d-%0*d", cfg.Prefix, year, cfg.PadLength, seq)
	}
	if !MatchesFormat(t, number) {
		return "", shared.NewDomainErrorf(CodeInvalidFormat,
			"Le numéro généré %q ne respecte pas le format attendu %s", number, pattern(cfg).String())
	}
	return number, nil
}

func pattern(cfg Config) *regexp.Regexp {
	if cfg.Reset == ResetContinuous {
		return regexp.MustCompile(fmt.Sprintf(`^[A-Z]{2,3}-\d{%d}$`, cfg.PadLength))
	}
	return regexp.MustCompile(fmt.Sprintf(`^[A-Z]{1,4}-\d{4}-\d{%d}$`, cfg.PadLength))
}

// MatchesFormat checks a number against the pattern and prefix of its type
func MatchesFormat(t Type, number string) bool {
	cfg, ok := configs[t]
	if !ok {
		return false
	}
	return pattern(cfg).MatchString(number) && strings.HasPrefix(number, cfg.Prefix+"-")
}

// Parsed is the decomposition of an official or legacy number
type Parsed struct {
	Type     Type   `json:"type"`
	Prefix   string `json:"prefix"`
	Day      int    `json:"day,omitempty"`
	Month    int    `json:"month,omitempty"`
	Year     int    `json:"year,omitempty"`
	Sequence int64  `json:"sequence"`
	Legacy   bool   `json:"isLegacyFormat"`

	hasDay   bool
	hasMonth bool
}

// Parse decodes a number. It returns false when the number is not recognised.
func Parse(number string) (Parsed, bool) {
	parts := strings.Split(number, "-")
	if len(parts) < 2 {
		return parseLegacy(number)
	}

	prefix := parts[0]
	var matched Type
	for _, t := range AllTypes() {
		if configs[t].Prefix == prefix {
			matched = t
			break
		}
	}
	if matched == "" {
		return Parsed{}, false
	}

	cfg := configs[matched]
	if cfg.Reset == ResetContinuous {
		if len(parts) != 2 {
			return Parsed{}, false
		}
		seq, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Parsed{}, false
		}
		return Parsed{Type: matched, Prefix: prefix, Sequence: seq}, true
	}

	if len(parts) != 3 {
		return Parsed{}, false
	}
	year, err1 := strconv.Atoi(parts[1])
	seq, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || year < 2020 || year > 2099 {
		return Parsed{}, false
	}
	return Parsed{Type: matched, Prefix: prefix, Year: year, Sequence: seq}, true
}

func parseLegacy(number string) (Parsed, bool) {
	for _, lp := range legacyPrefixes {
		if !strings.HasPrefix(number, lp.prefix) {
			continue
		}
		rest := number[len(lp.prefix):]
		if !allDigits(rest) {
			continue
		}
		p := Parsed{Type: lp.typ, Prefix: lp.prefix, Legacy: true}

		switch {
		case len(rest) == 10 && (lp.typ == TypeFacture || lp.typ == TypeFactureAcompte):
			// DDMMYYNNNN
			p.Day, p.hasDay = atoi(rest[0:2]), true
			p.Month, p.hasMonth = atoi(rest[2:4]), true
			p.Year = 2000 + atoi(rest[4:6])
			p.Sequence = int64(atoi(rest[6:]))
			return p, true
		case len(rest) == 8:
			// MMYYNNNN
			p.Month, p.hasMonth = atoi(rest[0:2]), true
			p.Year = 2000 + atoi(rest[2:4])
			p.Sequence = int64(atoi(rest[4:]))
			return p, true
		case len(rest) == 6 && lp.typ == TypeProject:
			p.Year = 2000 + atoi(rest[0:2])
			p.Sequence = int64(atoi(rest[2:]))
			return p, true
		case len(rest) == 4 && lp.typ == TypeClient:
			p.Sequence = int64(atoi(rest))
			return p, true
		}
	}
	return Parsed{}, false
}

// Validation is the outcome of Validate
type Validation struct {
	Valid  bool   `json:"valid"`
	Type   Type   `json:"type,omitempty"`
	Legacy bool   `json:"isLegacyFormat"`
	Error  string `json:"error,omitempty"`
}

// Validate checks that a number is well formed and its parts are in range
func Validate(number string) Validation {
	p, ok := Parse(number)
	if !ok {
		return Validation{Valid: false, Error: "Invalid document number format"}
	}
	v := Validation{Type: p.Type, Legacy: p.Legacy}

	switch {
	case p.hasDay && (p.Day < 1 || p.Day > 31):
		v.Error = "Invalid day in document number"
	case p.hasMonth && (p.Month < 1 || p.Month > 12):
		v.Error = "Invalid month in document number"
	case p.Year != 0 && (p.Year < 2020 || p.Year > 2099):
		v.Error = "Invalid year in document number"
	}
	if v.Error != "" {
		return v
	}

	maxSeq := int64(999999)
	if p.Legacy {
		maxSeq = 9999
	}
	if p.Sequence < 1 || p.Sequence > maxSeq {
		v.Error = "Invalid sequence number"
		return v
	}
	v.Valid = true
	return v
}

const draftPrefix = "DRAFT-"

// DraftNumber returns the temporary number given to a document before issue.
// A random suffix keeps drafts created in the same millisecond apart.
func DraftNumber(t Type, at time.Time) string {
	id := uuid.New()
	return draftPrefix + string(t) + "-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36)) +
		"-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// IsDraftNumber reports whether the number is a temporary draft number
func IsDraftNumber(number string) bool {
	return strings.HasPrefix(number, draftPrefix)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
