package content

import "khamboran/internal/scoring"

// imaginationRubric grades the "what did you picture" answer. Anchor
// keywords are the scenes the poem actually paints.
var imaginationRubric = scoring.Rubric{
	AnchorKeywords: []string{"ธรรมชาติ", "ความงาม", "พลัดพราก"},
	Keywords: []string{
		"ป่า", "สายน้ำ", "ท้องฟ้า", "สัตว์", "ดอกไม้",
		"ตะวัน", "แสง", "เงา", "สายลม", "ภูเขา",
	},
	AnchorWeight:  12,
	KeywordWeight: 6,
	LengthTiers: []scoring.LengthTier{
		{MinRunes: 40, Bonus: 5},
		{MinRunes: 80, Bonus: 10},
		{MinRunes: 150, Bonus: 15},
	},
	SentenceBonusTwo:   5,
	SentenceBonusThree: 10,
	QualityWords:       []string{"เปรียบ", "ราวกับ", "ประหนึ่ง", "ดุจ", "เสมือน"},
	ImageryWords:       []string{"ระยิบระยับ", "เรืองรอง", "ไหวเอน", "พลิ้ว", "ทอดยาว"},
	QualityBonus:       4,
	QualityCap:         12,
	ImageryBonus:       4,
	ImageryCap:         12,
	MinRuneFloor:       20,
	ShortPenalty:       15,
}

// interpretationRubric grades the "what does the poet mean" answer.
var interpretationRubric = scoring.Rubric{
	AnchorKeywords: []string{"อาลัย", "ความรัก", "พลัดพราก"},
	Keywords: []string{
		"กวี", "ความรู้สึก", "เศร้า", "คิดถึง", "จากลา",
		"เปรียบเทียบ", "สื่อ", "ความหมาย", "อารมณ์", "ชีวิต",
	},
	AnchorWeight:  12,
	KeywordWeight: 6,
	LengthTiers: []scoring.LengthTier{
		{MinRunes: 40, Bonus: 5},
		{MinRunes: 80, Bonus: 10},
		{MinRunes: 150, Bonus: 15},
	},
	SentenceBonusTwo:   5,
	SentenceBonusThree: 10,
	QualityWords:       []string{"เพราะ", "เนื่องจาก", "แสดงให้เห็น", "สะท้อน", "ตีความ"},
	ImageryWords:       []string{"อุปมา", "สัญลักษณ์", "ภาพพจน์", "โวหาร"},
	QualityBonus:       4,
	QualityCap:         12,
	ImageryBonus:       4,
	ImageryCap:         12,
	MinRuneFloor:       20,
	ShortPenalty:       15,
}

// ImaginationRubric returns the rubric for the imagination answer.
func ImaginationRubric() scoring.Rubric { return imaginationRubric }

// InterpretationRubric returns the rubric for the interpretation answer.
func InterpretationRubric() scoring.Rubric { return interpretationRubric }
