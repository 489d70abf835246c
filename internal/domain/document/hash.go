package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

type hashItem struct {
	Designation string `json:"designation"`
	Quantity    string `json:"quantity"`
	UnitPriceHT string `json:"unitPriceHT"`
	TVARate     string `json:"tvaRate"`
	TotalTTC    string `json:"totalTTC"`
}

type hashContent struct {
	Type       Type       `json:"type"`
	Number     string     `json:"number"`
	ClientID   string     `json:"clientId"`
	ClientName string     `json:"clientName"`
	Date       string     `json:"date"`
	Items      []hashItem `json:"items"`
	TotalHT    string     `json:"totalHT"`
	TotalTVA   string     `json:"totalTVA"`
	TotalTTC   string     `json:"totalTTC"`
}

// isoMillis matches the ISO-8601 UTC form with milliseconds
const isoMillis = "2006-01-02T15:04:05.000Z"

// ComputeHash returns the SHA-256 of the canonical JSON of the document's
// identity, client, date, lines and totals. Amounts are written without
// trailing zeros so the hash survives a round trip through the database.
func (d *Document) ComputeHash() string {
	c := hashContent{
		Type:       d.Type,
		Number:     d.Number,
		ClientID:   d.Client.ID.String(),
		ClientName: d.Client.Name,
		Date:       d.Date.UTC().Format(isoMillis),
		Items:      make([]hashItem, len(d.Items)),
		TotalHT:    d.TotalHT.String(),
		TotalTVA:   d.TotalTVA.String(),
		TotalTTC:   d.TotalTTC.String(),
	}
	for i, it := range d.Items {
		c.Items[i] = hashItem{
			Designation: it.Designation,
			Quantity:    it.Quantity.String(),
			UnitPriceHT: it.UnitPriceHT.String(),
			TVARate:     strconv.Itoa(it.TVARate),
			TotalTTC:    it.TotalTTC.String(),
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(c)
	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:])
}

// IntegrityCheck is the result of comparing the stored hash with the current content
type IntegrityCheck struct {
	Valid       bool      `json:"isValid"`
	StoredHash  string    `json:"storedHash,omitempty"`
	CurrentHash string    `json:"currentHash,omitempty"`
	Reason      string    `json:"reason"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// VerifyIntegrity recomputes the content hash of an issued document
func (d *Document) VerifyIntegrity(now time.Time) IntegrityCheck {
	if d.IsDraft {
		return IntegrityCheck{Valid: true, Reason: "Document brouillon - pas de vérification requise", CheckedAt: now}
	}
	stored := d.Archive.DocumentHash
	if stored == "" {
		return IntegrityCheck{Reason: "Aucun hash d'intégrité stocké pour ce document", CheckedAt: now}
	}
	current := d.ComputeHash()
	check := IntegrityCheck{StoredHash: stored, CurrentHash: current, CheckedAt: now}
	if stored == current {
		check.Valid = true
		check.Reason = "Document intègre"
	} else {
		check.Reason = "ALERTE: Le document a été modifié!"
	}
	return check
}
