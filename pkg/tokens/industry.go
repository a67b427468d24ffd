package tokens

// FontPair is an industry-specific heading/body font pairing.
type FontPair struct {
	Heading       string  `toml:"heading" json:"heading"`
	HeadingWeight string  `toml:"heading_weight" json:"heading_weight"`
	HeadingStyle  string  `toml:"heading_style,omitempty" json:"heading_style,omitempty"`
	Body          string  `toml:"body" json:"body"`
	BodyWeight    string  `toml:"body_weight" json:"body_weight"`
	ScaleRatio    float64 `toml:"scale_ratio" json:"scale_ratio"`
}

// DefaultIndustry is the key used when an industry is unknown.
const DefaultIndustry = "default"

func defaultIndustries() map[string]FontPair {
	return map[string]FontPair{
		"medical":       {Heading: "Poppins", HeadingWeight: "600", Body: "Open Sans", BodyWeight: "400", ScaleRatio: 1.25},
		"beauty":        {Heading: "Playfair Display", HeadingWeight: "500", Body: "Montserrat", BodyWeight: "300", ScaleRatio: 1.333},
		"gastro":        {Heading: "Lora", HeadingWeight: "500", HeadingStyle: "italic", Body: "Montserrat", BodyWeight: "600", ScaleRatio: 1.5},
		"fitness":       {Heading: "Oswald", HeadingWeight: "700", Body: "Roboto", BodyWeight: "400", ScaleRatio: 1.414},
		"technology":    {Heading: "Inter", HeadingWeight: "700", Body: "Inter", BodyWeight: "400", ScaleRatio: 1.25},
		"luxury":        {Heading: "Cormorant Garamond", HeadingWeight: "600", Body: "Montserrat", BodyWeight: "300", ScaleRatio: 1.5},
		DefaultIndustry: {Heading: "Montserrat", HeadingWeight: "700", Body: "Montserrat", BodyWeight: "400", ScaleRatio: 1.25},
	}
}

// FontsFor returns the font pairing for industry, falling back to the default.
func (t Tokens) FontsFor(industry string) FontPair {
	if fp, ok := t.Industries[industry]; ok {
		return fp
	}
	return t.Industries[DefaultIndustry]
}
