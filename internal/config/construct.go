package config

import (
	"maps"
	"slices"
)

// NewVPSConnection validates vps and returns it with defaults applied and the
// SSH key path expanded.
func NewVPSConnection(vps VPSConnection) (VPSConnection, error) {
	if err := defaultValidator.ValidateVPS(&vps); err != nil {
		return VPSConnection{}, err
	}
	return vps, nil
}

// NewServiceOverride returns svc with empty collections in place of nil ones.
// Every combination of typed fields is valid; shape errors can only come from
// decoding a document.
func NewServiceOverride(svc ServiceOverride) ServiceOverride {
	return normalizeService(svc.clone())
}

// NewApplicationDescriptor validates app and returns a copy with defaults applied.
func NewApplicationDescriptor(app ApplicationDescriptor) (ApplicationDescriptor, error) {
	app = app.clone()
	if err := defaultValidator.ValidateApplication(&app); err != nil {
		return ApplicationDescriptor{}, err
	}
	return app, nil
}

// NewDeploymentConfig validates both sections and returns the assembled
// configuration. A failure in either section fails the whole construction.
func NewDeploymentConfig(vps VPSConnection, app ApplicationDescriptor) (*DeploymentConfig, error) {
	cfg := &DeploymentConfig{
		VPS:         vps,
		Application: app.clone(),
	}
	if err := defaultValidator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a ApplicationDescriptor) clone() ApplicationDescriptor {
	if a.Port != nil {
		port := *a.Port
		a.Port = &port
	}
	a.Environment = maps.Clone(a.Environment)
	if a.Dependencies != nil {
		deps := make(map[string]ServiceOverride, len(a.Dependencies))
		for name, svc := range a.Dependencies {
			deps[name] = svc.clone()
		}
		a.Dependencies = deps
	}
	return a
}

func (s ServiceOverride) clone() ServiceOverride {
	s.Environment = maps.Clone(s.Environment)
	s.Volumes = slices.Clone(s.Volumes)
	s.Ports = slices.Clone(s.Ports)
	s.DependsOn = slices.Clone(s.DependsOn)
	s.Extra = maps.Clone(s.Extra)
	return s
}
