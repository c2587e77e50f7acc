package bean

// ── Registrar ─────────────────────────────────────────────────────────────────

// Registrar is a unit of configuration: it writes one or more definitions
// into a registry. Registrars are composed explicitly — a composition root
// passes an ordered list, there is no scanning or implicit discovery.
//
//	// Spring: a @Configuration class, reduced to its registration effect
type Registrar interface {
	Apply(registry *Container) error
}

// RegistrarFunc adapts a plain function to the Registrar interface.
type RegistrarFunc func(registry *Container) error

// Apply implements Registrar.
func (f RegistrarFunc) Apply(registry *Container) error { return f(registry) }

// ApplyAll runs registrars against registry in order, stopping at the first
// failure.
func ApplyAll(registry *Container, registrars ...Registrar) error {
	for _, r := range registrars {
		if err := r.Apply(registry); err != nil {
			return err
		}
	}
	return nil
}
