package layer

// Role is the semantic function of a layer within a composition.
type Role string

// Layer roles.
const (
	RoleHeadline   Role = "headline"
	RoleSubtext    Role = "subtext"
	RoleBody       Role = "body"
	RoleCTA        Role = "cta"
	RolePhoto      Role = "photo"
	RoleBackground Role = "background"
	RoleOverlay    Role = "overlay"
	RoleDecoration Role = "decoration"
	RoleShape      Role = "shape"
)

// HeadlineMinFontSize is the font size at which an unnamed text layer is
// treated as a headline.
const HeadlineMinFontSize = 36.0

var (
	backgroundKeywords = []string{"background", "bg"}
	photoKeywords      = []string{"photo", "image"}
	overlayKeywords    = []string{"overlay", "gradient"}
	decorationKeywords = []string{"accent", "line", "shape", "decoration", "divider", "highlight"}
	ctaKeywords        = []string{"cta", "button"}
	ctaTextKeywords    = []string{"cta", "button", "action", "call"}
	subtextKeywords    = []string{"subtext", "subtitle", "description", "body", "tagline"}
	headlineKeywords   = []string{"headline", "title", "header", "heading", "h1", "h2"}
)

// InferRole classifies a layer by kind, name and font size.
//
// Textboxes are always CTAs. Named text layers are matched against keyword
// sets in priority order (cta, subtext, headline); unnamed text falls back to
// headline when its font size is at least [HeadlineMinFontSize].
func InferRole(l Layer) Role {
	if !l.IsText() {
		switch {
		case l.NameHas(backgroundKeywords...):
			return RoleBackground
		case l.Kind == KindImage || l.NameHas(photoKeywords...):
			return RolePhoto
		case l.NameHas(overlayKeywords...):
			return RoleOverlay
		case l.Kind == KindLine || l.NameHas(decorationKeywords...):
			return RoleDecoration
		case l.NameHas(ctaKeywords...):
			return RoleCTA
		}
		return RoleShape
	}

	switch {
	case l.Kind == KindTextbox:
		return RoleCTA
	case l.NameHas(ctaTextKeywords...):
		return RoleCTA
	case l.NameHas(subtextKeywords...):
		return RoleSubtext
	case l.NameHas(headlineKeywords...):
		return RoleHeadline
	case l.NameHas("sub"):
		return RoleSubtext
	case l.Properties.FontSize >= HeadlineMinFontSize:
		return RoleHeadline
	}
	return RoleBody
}

// Reclassify returns a copy of l with its role inferred again. Use it after a
// stage changes a property the role depends on, such as the font size of an
// unnamed text layer.
func Reclassify(l Layer) Layer {
	l.Role = InferRole(l)
	return l
}

// IsContent reports whether the role carries copy.
func (r Role) IsContent() bool {
	return r == RoleHeadline || r == RoleSubtext || r == RoleBody || r == RoleCTA
}
