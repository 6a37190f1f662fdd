package config

// SetTuningPath sets the tuning file path for tests
func (p *Providers) SetTuningPath(path string) {
	p.tuningPath = path
}

// Tuning returns the loaded tuning values for tests
func (p *Providers) Tuning() ProviderTuning {
	return p.tuning
}
