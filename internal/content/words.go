// Package content holds the static Thai content pack: the archaic vocabulary
// list, the comprehension question bank, the writing rubric tables and the
// teacher credential table. Everything here is configuration data consumed
// by the game and scoring packages, never mutated at runtime.
package content

import "khamboran/internal/models"

// vocabWords lists the archaic words hidden in the poem. The meaning field is
// a comma-separated list of accepted senses; answer checking matches any one
// clause (see scoring.MeaningMatches).
var vocabWords = []models.VocabWord{
	{Word: "ม้วย", Meaning: "ตาย, สิ้นชีวิต, เสียชีวิต, สวรรคต", Points: 10, Hint: "ตรงข้ามกับการมีชีวิตอยู่"},
	{Word: "ไคลคลา", Meaning: "เดินทาง, เคลื่อนไป, ออกเดินทาง", Points: 10, Hint: "การไปจากที่หนึ่งสู่อีกที่หนึ่ง"},
	{Word: "โฉมตรู", Meaning: "หญิงงาม, นางงาม, ผู้มีรูปงาม", Points: 10, Hint: "ใช้เรียกผู้หญิงในวรรณคดี"},
	{Word: "ภุชงค์", Meaning: "งู, นาค, พญานาค", Points: 10, Hint: "สัตว์เลื้อยคลานในตำนาน"},
	{Word: "อัมพร", Meaning: "ท้องฟ้า, ฟากฟ้า, อากาศ", Points: 10, Hint: "สิ่งที่อยู่เหนือศีรษะเรา"},
	{Word: "สุริยา", Meaning: "พระอาทิตย์, ดวงตะวัน, ตะวัน", Points: 10, Hint: "ขึ้นทางทิศตะวันออก"},
	{Word: "มัจฉา", Meaning: "ปลา, สัตว์น้ำ", Points: 10, Hint: "อาศัยอยู่ในน้ำ"},
	{Word: "พนา", Meaning: "ป่า, ป่าไม้, พงไพร", Points: 10, Hint: "ที่อยู่ของสัตว์ป่า"},
	{Word: "คชสาร", Meaning: "ช้าง, ช้างใหญ่", Points: 10, Hint: "สัตว์บกที่ใหญ่ที่สุด"},
	{Word: "วารี", Meaning: "น้ำ, สายน้ำ, ธารา", Points: 10, Hint: "สิ่งจำเป็นต่อชีวิต ไหลจากที่สูงลงที่ต่ำ"},
	{Word: "กันแสง", Meaning: "ร้องไห้, คร่ำครวญ, โศกเศร้า", Points: 10, Hint: "อาการเมื่อเสียใจมาก"},
	{Word: "เสาวภาคย์", Meaning: "ความงาม, โฉมงาม, ความดีงาม", Points: 10, Hint: "สิ่งที่กวีชมในตัวนางเอก"},
}

// referenceSources are the dictionaries a learner must cite when answering.
var referenceSources = []models.ReferenceSource{
	{ID: "royal", Label: "พจนานุกรมฉบับราชบัณฑิตยสถาน"},
	{ID: "pluang", Label: "พจนานุกรมไทย-ไทย อ.เปลื้อง ณ นคร"},
	{ID: "literary", Label: "ประมวลศัพท์วรรณคดีไทย"},
}

// VocabWords returns a copy of the vocabulary list.
func VocabWords() []models.VocabWord {
	out := make([]models.VocabWord, len(vocabWords))
	copy(out, vocabWords)
	return out
}

// FindWord looks a word up in the pack.
func FindWord(word string) (models.VocabWord, bool) {
	for _, w := range vocabWords {
		if w.Word == word {
			return w, true
		}
	}
	return models.VocabWord{}, false
}

// ReferenceSources returns a copy of the citable dictionary list.
func ReferenceSources() []models.ReferenceSource {
	out := make([]models.ReferenceSource, len(referenceSources))
	copy(out, referenceSources)
	return out
}

// ValidReferenceSource reports whether id names a known dictionary.
func ValidReferenceSource(id string) bool {
	for _, s := range referenceSources {
		if s.ID == id {
			return true
		}
	}
	return false
}
