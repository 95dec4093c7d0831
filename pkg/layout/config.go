package layout

import "fmt"

// Config holds the force constants of the simulation. DefaultConfig carries
// the dashboard canvas values; PreviewConfig the lighter landing preview set.
type Config struct {
	// Link force: pulls linked nodes toward LinkDistance apart. The per-edge
	// factor is LinkStrength * edge strength.
	LinkDistance float64 `yaml:"link_distance" toml:"link_distance" json:"link_distance"`
	LinkStrength float64 `yaml:"link_strength" toml:"link_strength" json:"link_strength"`

	// Many-body force. Negative Charge repels. A DistanceMax of zero
	// disables the cutoff.
	Charge      float64 `yaml:"charge" toml:"charge" json:"charge"`
	DistanceMin float64 `yaml:"distance_min" toml:"distance_min" json:"distance_min"`
	DistanceMax float64 `yaml:"distance_max" toml:"distance_max" json:"distance_max"`

	// Barnes-Hut approximation is used when Theta > 0 and at least
	// BarnesHutMin nodes are live; smaller graphs use exact pairs.
	Theta        float64 `yaml:"theta" toml:"theta" json:"theta"`
	BarnesHutMin int     `yaml:"barnes_hut_min" toml:"barnes_hut_min" json:"barnes_hut_min"`

	CenterStrength  float64 `yaml:"center_strength" toml:"center_strength" json:"center_strength"`
	CollideRadius   float64 `yaml:"collide_radius" toml:"collide_radius" json:"collide_radius"`
	CollideStrength float64 `yaml:"collide_strength" toml:"collide_strength" json:"collide_strength"`
	AxisStrength    float64 `yaml:"axis_strength" toml:"axis_strength" json:"axis_strength"`

	// Cooling schedule.
	AlphaDecay        float64 `yaml:"alpha_decay" toml:"alpha_decay" json:"alpha_decay"`
	AlphaMin          float64 `yaml:"alpha_min" toml:"alpha_min" json:"alpha_min"`
	VelocityRetention float64 `yaml:"velocity_retention" toml:"velocity_retention" json:"velocity_retention"`
	DragAlphaTarget   float64 `yaml:"drag_alpha_target" toml:"drag_alpha_target" json:"drag_alpha_target"`
	ReheatAlpha       float64 `yaml:"reheat_alpha" toml:"reheat_alpha" json:"reheat_alpha"`

	// Cursor field (landing preview): nodes within CursorRadius of the
	// cursor are pushed away with CursorCharge.
	CursorRadius float64 `yaml:"cursor_radius" toml:"cursor_radius" json:"cursor_radius"`
	CursorCharge float64 `yaml:"cursor_charge" toml:"cursor_charge" json:"cursor_charge"`
	CursorAlpha  float64 `yaml:"cursor_alpha" toml:"cursor_alpha" json:"cursor_alpha"`

	// Seeding of new nodes around the center.
	SeedJitter float64 `yaml:"seed_jitter" toml:"seed_jitter" json:"seed_jitter"`
	Seed       int64   `yaml:"seed" toml:"seed" json:"seed"`
}

// DefaultConfig returns the canonical force constants.
func DefaultConfig() Config {
	return Config{
		LinkDistance:      180,
		LinkStrength:      0.2,
		Charge:            -400,
		DistanceMin:       1,
		DistanceMax:       500,
		Theta:             0.9,
		BarnesHutMin:      200,
		CenterStrength:    0.03,
		CollideRadius:     80,
		CollideStrength:   0.8,
		AxisStrength:      0.01,
		AlphaDecay:        0.0228,
		AlphaMin:          0.01,
		VelocityRetention: 0.4,
		DragAlphaTarget:   0.3,
		ReheatAlpha:       1,
		CursorRadius:      150,
		CursorCharge:      -30,
		CursorAlpha:       0.1,
		SeedJitter:        200,
		Seed:              1,
	}
}

// PreviewConfig returns the softer constants used by the landing preview.
func PreviewConfig() Config {
	c := DefaultConfig()
	c.LinkDistance = 100
	c.LinkStrength = 0.3
	c.Charge = -200
	c.DistanceMax = 0
	c.CenterStrength = 1
	c.CollideRadius = 40
	c.CollideStrength = 1
	c.AxisStrength = 0
	c.AlphaDecay = 0.01
	c.AlphaMin = 0.001
	return c
}

// Validate reports configuration values the integrator cannot converge with.
func (c Config) Validate() error {
	switch {
	case c.VelocityRetention <= 0 || c.VelocityRetention >= 1:
		return fmt.Errorf("velocity_retention must be in (0,1), got %v", c.VelocityRetention)
	case c.AlphaDecay <= 0 || c.AlphaDecay >= 1:
		return fmt.Errorf("alpha_decay must be in (0,1), got %v", c.AlphaDecay)
	case c.AlphaMin <= 0:
		return fmt.Errorf("alpha_min must be positive, got %v", c.AlphaMin)
	case c.LinkDistance < 0 || c.DistanceMin < 0 || c.DistanceMax < 0 || c.CollideRadius < 0:
		return fmt.Errorf("distances must not be negative")
	case c.LinkStrength < 0:
		return fmt.Errorf("link_strength must not be negative, got %v", c.LinkStrength)
	case c.Theta < 0:
		return fmt.Errorf("theta must not be negative, got %v", c.Theta)
	case c.SeedJitter <= 0:
		return fmt.Errorf("seed_jitter must be positive, got %v", c.SeedJitter)
	}
	return nil
}
