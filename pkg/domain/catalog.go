package domain

// HairStyle はカタログの髪型エントリです。
type HairStyle struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// FaceShapeAdvice は顔型ごとのおすすめと避けるべき髪型です。
type FaceShapeAdvice struct {
	Recommended string `json:"recommended" yaml:"recommended"`
	Avoid       string `json:"avoid" yaml:"avoid"`
}

var HairStyles = []HairStyle{
	{ID: "undercut", Name: "Undercut", Description: "Sides shaved close, longer on top"},
	{ID: "mohican", Name: "Mohican", Description: "Shaved sides, fringe swept upright"},
	{ID: "buzz_cut", Name: "Buzz Cut", Description: "Clipped short, 1-3cm"},
	{ID: "sport", Name: "Sport", Description: "Neat with a strong raised fringe"},
	{ID: "side_part_73", Name: "Side Part 7/3", Description: "Elegant deep side parting"},
	{ID: "side_part_64", Name: "Side Part 6/4", Description: "Parting close to the centre, relaxed"},
	{ID: "quiff", Name: "Quiff", Description: "Fringe swept back with natural volume"},
	{ID: "pompadour", Name: "Pompadour", Description: "High glossy volume, classic look"},
	{ID: "layer", Name: "Layer", Description: "Layered cut, soft and youthful"},
	{ID: "two_block", Name: "Two Block", Description: "Two separated blocks, Korean style"},
	{ID: "comma_hair", Name: "Comma Hair", Description: "Comma shaped fringe"},
	{ID: "mullet", Name: "Mullet", Description: "Long at the nape, bold character"},
	{ID: "man_bun", Name: "Man Bun", Description: "Long hair tied into a bun"},
	{ID: "top_knot", Name: "Top Knot", Description: "Undercut with a bun on the crown"},
	{ID: "crew_cut", Name: "Crew Cut", Description: "Short and tidy, a little longer than a buzz cut"},
	{ID: "textured_crop", Name: "Textured Crop", Description: "Short with a deliberately messy fringe"},
	{ID: "slicked_back", Name: "Slicked Back", Description: "Everything combed straight back"},
}

var HairColors = []string{
	"Natural black",
	"Platinum",
	"Smoky grey",
	"Chestnut brown",
	"Chocolate brown",
	"Golden blonde",
	"Moss green",
	"Wine red",
}

var faceShapeAdvice = map[FaceShape]FaceShapeAdvice{
	FaceShapeRound: {
		Recommended: "Undercut, Quiff, raised fringe (adds height)",
		Avoid:       "Buzz cut, long blunt fringe (shortens the face)",
	},
	FaceShapeLong: {
		Recommended: "Layer, Side Part, Two Block (covers the forehead)",
		Avoid:       "Very high undercut, sides shaved too close",
	},
	FaceShapeSquare: {
		Recommended: "Undercut, Pompadour, Buzz Cut",
		Avoid:       "Centre parting",
	},
	FaceShapeOval: {
		Recommended: "Almost any hairstyle",
		Avoid:       "Covering too much of the face",
	},
}

// FindHairStyle は ID に一致する髪型を返します。見つからない場合は先頭のエントリを返します。
func FindHairStyle(id string) HairStyle {
	for _, s := range HairStyles {
		if s.ID == id {
			return s
		}
	}
	return HairStyles[0]
}

// AdviceFor は顔型に対するアドバイスを返します。
func AdviceFor(shape FaceShape) FaceShapeAdvice {
	return faceShapeAdvice[shape]
}
