package content

import "khamboran/internal/models"

// quizQuestions is the comprehension answer key. Index positions line up
// with the ComprehensionAnswers slice in a session.
var quizQuestions = []models.QuizQuestion{
	{
		Text: "บทประพันธ์ที่อ่านแต่งด้วยคำประพันธ์ชนิดใด",
		Options: []string{
			"โคลงสี่สุภาพ",
			"กลอนสุภาพ",
			"กาพย์ยานี 11",
			"ฉันท์",
		},
		CorrectIndex: 1,
	},
	{
		Text: "คำว่า \"ม้วย\" ในบทประพันธ์มีความหมายว่าอย่างไร",
		Options: []string{
			"เดินทาง",
			"หลับใหล",
			"สิ้นชีวิต",
			"โศกเศร้า",
		},
		CorrectIndex: 2,
	},
	{
		Text: "กวีใช้ธรรมชาติในบทประพันธ์เพื่อสื่อถึงสิ่งใด",
		Options: []string{
			"ความอุดมสมบูรณ์ของบ้านเมือง",
			"อารมณ์และความรู้สึกของตัวละคร",
			"ฤดูกาลที่เปลี่ยนแปลง",
			"ความยิ่งใหญ่ของกษัตริย์",
		},
		CorrectIndex: 1,
	},
	{
		Text: "เหตุใดกวีจึงเลือกใช้คำโบราณแทนคำสามัญ",
		Options: []string{
			"เพื่อให้อ่านยากขึ้น",
			"เพื่อความไพเราะและเหมาะกับฉันทลักษณ์",
			"เพราะสมัยนั้นไม่มีคำสามัญ",
			"เพื่อซ่อนความหมายจากผู้อ่าน",
		},
		CorrectIndex: 1,
	},
	{
		Text: "ข้อใดสรุปแก่นของบทประพันธ์ได้เหมาะสมที่สุด",
		Options: []string{
			"การผจญภัยในป่าใหญ่",
			"ความรักที่มีต่อธรรมชาติ",
			"ความพลัดพรากและความอาลัย",
			"การสรรเสริญเทพเจ้า",
		},
		CorrectIndex: 2,
	},
}

// QuizQuestions returns a copy of the question bank.
func QuizQuestions() []models.QuizQuestion {
	out := make([]models.QuizQuestion, len(quizQuestions))
	for i, q := range quizQuestions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
		out[i] = q
	}
	return out
}
