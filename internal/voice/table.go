package voice

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTable is returned when a command table fails validation.
var ErrInvalidTable = errors.New("invalid_command_table")

// Command maps a set of trigger patterns to a navigation action. Responses
// are keyed by locale (en-US, es, fr).
type Command struct {
	Action    string            `yaml:"action" json:"action"`
	Patterns  []string          `yaml:"patterns" json:"patterns"`
	Responses map[string]string `yaml:"responses" json:"responses"`
}

// Table is an ordered command list. Order matters: the first matching
// command wins.
type Table []Command

// Validate checks that every command has an action and at least one
// non-blank pattern, and that actions are unique.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no commands", ErrInvalidTable)
	}
	seen := make(map[string]bool, len(t))
	for i, c := range t {
		if strings.TrimSpace(c.Action) == "" {
			return fmt.Errorf("%w: command %d has no action", ErrInvalidTable, i)
		}
		if seen[c.Action] {
			return fmt.Errorf("%w: duplicate action %q", ErrInvalidTable, c.Action)
		}
		seen[c.Action] = true
		ok := false
		for _, p := range c.Patterns {
			if strings.TrimSpace(p) != "" {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: action %q has no patterns", ErrInvalidTable, c.Action)
		}
	}
	return nil
}

type tableFile struct {
	Commands Table `yaml:"commands"`
}

// ParseTable decodes a YAML document of the form
//
//	commands:
//	  - action: invoices
//	    patterns: [invoices, bills, facturas]
//	    responses: {en-US: Opening invoices, es: Abriendo facturas}
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode command table: %w", err)
	}
	if err := f.Commands.Validate(); err != nil {
		return nil, err
	}
	return f.Commands, nil
}

// LoadTable reads a YAML command table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command table: %w", err)
	}
	return ParseTable(data)
}

// DefaultTable returns the built-in navigation commands. Each call returns a
// fresh copy.
func DefaultTable() Table {
	return Table{
		{
			Action:   "dashboard",
			Patterns: []string{"dashboard", "home", "overview", "inicio", "tablero", "panel de control", "accueil", "tableau de bord"},
			Responses: map[string]string{
				"en-US": "Opening your dashboard",
				"es":    "Abriendo tu panel",
				"fr":    "Ouverture du tableau de bord",
			},
		},
		{
			Action:   "invoices",
			Patterns: []string{"invoices", "invoicing", "bills", "facturas", "factures", "facturación", "facturation"},
			Responses: map[string]string{
				"en-US": "Opening invoices",
				"es":    "Abriendo facturas",
				"fr":    "Ouverture des factures",
			},
		},
		{
			Action:   "estimates",
			Patterns: []string{"estimates", "quotes", "quotations", "presupuestos", "cotizaciones", "devis"},
			Responses: map[string]string{
				"en-US": "Opening estimates",
				"es":    "Abriendo presupuestos",
				"fr":    "Ouverture des devis",
			},
		},
		{
			Action:   "clients",
			Patterns: []string{"clients", "customers", "clientes", "contacts"},
			Responses: map[string]string{
				"en-US": "Opening clients",
				"es":    "Abriendo clientes",
				"fr":    "Ouverture des clients",
			},
		},
		{
			Action:   "work-orders",
			Patterns: []string{"work orders", "work order", "jobs", "órdenes de trabajo", "ordenes de trabajo", "bons de travail"},
			Responses: map[string]string{
				"en-US": "Opening work orders",
				"es":    "Abriendo órdenes de trabajo",
				"fr":    "Ouverture des bons de travail",
			},
		},
		{
			Action:   "accounting",
			Patterns: []string{"accounting", "expenses", "receipts", "contabilidad", "gastos", "recibos", "comptabilité", "dépenses"},
			Responses: map[string]string{
				"en-US": "Opening accounting",
				"es":    "Abriendo contabilidad",
				"fr":    "Ouverture de la comptabilité",
			},
		},
		{
			Action:   "crm",
			Patterns: []string{"crm", "pipeline", "leads", "deals", "oportunidades", "prospects"},
			Responses: map[string]string{
				"en-US": "Opening your pipeline",
				"es":    "Abriendo oportunidades",
				"fr":    "Ouverture du pipeline",
			},
		},
	}
}
