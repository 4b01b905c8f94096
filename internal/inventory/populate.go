package inventory

import (
	"log/slog"

	"lldpinventory/internal/domain"
)

// Populator turns device descriptors into inventory hosts
type Populator struct {
	store   Store
	grouper Grouper
	rules   GroupingConfig
	logger  *slog.Logger

	// OnHostAdded is called after a host and its variables are stored
	OnHostAdded func(d domain.DeviceDescriptor)
}

// NewPopulator creates a Populator. A nil logger uses slog.Default.
func NewPopulator(store Store, grouper Grouper, rules GroupingConfig, logger *slog.Logger) *Populator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Populator{
		store:   store,
		grouper: grouper,
		rules:   rules,
		logger:  logger.With("component", "populator"),
	}
}

// Populate adds each descriptor as a host, sets its variables and applies
// compose, conditional group and keyed group rules, in that order. Hosts
// added before a failure stay in the store.
func (p *Populator) Populate(descriptors []domain.DeviceDescriptor) error {
	strict := p.rules.Strict

	for _, d := range descriptors {
		host := d.Name()
		p.store.AddHost(host)

		keys, vars := descriptorVars(d)
		for _, k := range keys {
			if err := p.store.SetVariable(host, k, vars[k]); err != nil {
				return err
			}
		}

		if err := p.grouper.SetComposedVariables(p.rules.Compose, p.store.HostVars(host), host, strict); err != nil {
			return err
		}

		hostVars := p.store.HostVars(host)
		if err := p.grouper.AddHostToConditionalGroups(p.rules.Groups, hostVars, host, strict); err != nil {
			return err
		}
		if err := p.grouper.AddHostToKeyedGroups(p.rules.KeyedGroups, hostVars, host, strict); err != nil {
			return err
		}

		p.logger.Debug("host populated", "host", host, "role", d.Role())
		if p.OnHostAdded != nil {
			p.OnHostAdded(d)
		}
	}
	return nil
}
