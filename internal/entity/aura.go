package entity

// Color is the categorical verdict shown on a Circle.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
	ColorIndigo Color = "indigo"
	ColorWhite  Color = "white"
)

// Circle is the coarse verdict of an aura plus its explanation.
type Circle struct {
	Color  Color  `json:"color"`
	Intent string `json:"intent"`
}

// Ray is a single score with its confidence, both in [0,100].
type Ray struct {
	Value      int `json:"value"`
	Saturation int `json:"saturation"`
}

// Star holds the seven named rays of an aura.
type Star struct {
	Stability Ray `json:"stability"`
	Flow      Ray `json:"flow"`
	Will      Ray `json:"will"`
	Relation  Ray `json:"relation"`
	Voice     Ray `json:"voice"`
	Meaning   Ray `json:"meaning"`
	Integrity Ray `json:"integrity"`
}

// UniformStar returns a star with every ray set to the same value and saturation.
func UniformStar(value, saturation int) Star {
	r := Ray{Value: value, Saturation: saturation}
	return Star{Stability: r, Flow: r, Will: r, Relation: r, Voice: r, Meaning: r, Integrity: r}
}

// Aura is the Circle+Star pair stored for links.
type Aura struct {
	Circle Circle `json:"circle"`
	Star   Star   `json:"star"`
}

// Relevance values relative to the user's interests and exclusions.
const (
	RelevanceExcluded = -1
	RelevanceNeutral  = 0
	RelevanceMatched  = 1
)

// PageAura is the computed verdict for a page.
type PageAura struct {
	Circle    Circle `json:"circle"`
	Star      Star   `json:"star"`
	Relevance int    `json:"relevance"`
}

// Aura drops the relevance part.
func (p PageAura) Aura() Aura {
	return Aura{Circle: p.Circle, Star: p.Star}
}
