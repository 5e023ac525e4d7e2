package nodesync

// Option configures a Controller.
type Option func(*Controller)

// WithMirror registers an external store that receives a copy of the
// document text on every commit. The engine writes it and never reads it.
func WithMirror(m Mirror) Option {
	return func(c *Controller) {
		c.mirror = m
	}
}
