package crm

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
)

func auditLeadConverted(l *crm.Lead, c *crm.Client, p *crm.Project, actor *uuid.UUID) *audit.Log {
	id := l.ID
	desc := fmt.Sprintf("Lead %s converti en client %s", l.Number, c.Number)
	if p != nil {
		desc += fmt.Sprintf(" avec le projet %s", p.Number)
	}
	return audit.New(audit.ActionConvert, audit.EntityLead, &id, desc).
		WithChange("status", nil, l.Status).
		WithChange("clientId", nil, c.ID).
		Classify(audit.CategoryClient, audit.SeverityInfo).
		By(actor)
}

func auditClientCreated(c *crm.Client, actor *uuid.UUID) *audit.Log {
	id := c.ID
	return audit.New(audit.ActionCreate, audit.EntityClient, &id, fmt.Sprintf("Client %s créé", c.Number)).
		Classify(audit.CategoryClient, audit.SeverityInfo).
		By(actor)
}

func auditClientDeleted(c *crm.Client, actor *uuid.UUID) *audit.Log {
	id := c.ID
	return audit.New(audit.ActionDelete, audit.EntityClient, &id,
		fmt.Sprintf("Client %s (%s) supprimé", c.Number, c.DisplayName())).
		Classify(audit.CategoryClient, audit.SeverityWarning).
		By(actor)
}

func auditProjectDeleted(p *crm.Project, actor *uuid.UUID) *audit.Log {
	id := p.ID
	return audit.New(audit.ActionDelete, audit.EntityProject, &id, fmt.Sprintf("Projet %s supprimé", p.Number)).
		Classify(audit.CategoryClient, audit.SeverityWarning).
		By(actor)
}
