package theme

// Grayscale is the minimalist scheme.
var Grayscale = Scheme{
	Name:            "grayscale",
	Background:      RGB(15, 15, 15),
	TimerBackground: RGB(40, 40, 40),
	TimerFill:       RGB(200, 200, 200),
	TimerText:       RGB(255, 255, 255),
	QuestionText:    RGB(255, 255, 255),
	AnswerText:      RGB(200, 200, 200),
	AnswerCorrect:   RGB(255, 255, 255),
	AnswerIncorrect: RGB(100, 100, 100),

	AnswerButtonNormal:    RGB(50, 50, 50),
	AnswerButtonCorrect:   RGB(120, 120, 120),
	AnswerButtonIncorrect: RGB(28, 28, 28),

	Accent: RGB(180, 180, 180),
}

// GoldPurple is the colorblind-friendly gold and purple scheme. It is the
// fallback for unknown names.
var GoldPurple = Scheme{
	Name:            "gold-purple",
	Background:      RGB(20, 15, 35),
	TimerBackground: RGB(40, 35, 50),
	TimerFill:       RGB(255, 200, 50),
	TimerText:       RGB(255, 255, 255),
	QuestionText:    RGB(255, 255, 255),
	AnswerText:      RGB(220, 220, 255),
	AnswerCorrect:   RGB(255, 215, 0),
	AnswerIncorrect: RGB(150, 130, 180),

	AnswerButtonNormal:    RGB(55, 45, 80),
	AnswerButtonCorrect:   RGB(190, 140, 20),
	AnswerButtonIncorrect: RGB(70, 60, 90),

	Accent: RGB(180, 120, 255),
}

// Colorblind uses the Okabe-Ito blue/orange pair for the reveal, which
// stays distinguishable under all common color vision deficiencies.
var Colorblind = Scheme{
	Name:            "colorblind",
	Background:      RGB(22, 24, 38),
	TimerBackground: RGB(45, 47, 62),
	TimerFill:       RGB(86, 180, 233),
	TimerText:       RGB(255, 255, 255),
	QuestionText:    RGB(255, 255, 255),
	AnswerText:      RGB(240, 240, 240),
	AnswerCorrect:   RGB(0, 114, 178),
	AnswerIncorrect: RGB(213, 94, 0),

	AnswerButtonNormal:    RGB(60, 62, 84),
	AnswerButtonCorrect:   RGB(0, 114, 178),
	AnswerButtonIncorrect: RGB(213, 94, 0),

	Accent: RGB(204, 121, 167),
}

// Classic is the original blue scheme.
var Classic = Scheme{
	Name:            "default",
	Background:      RGB(20, 30, 60),
	TimerBackground: RGB(40, 40, 40),
	TimerFill:       RGB(0, 255, 0),
	TimerText:       RGB(255, 255, 255),
	QuestionText:    RGB(255, 255, 255),
	AnswerText:      RGB(255, 255, 255),
	AnswerCorrect:   RGB(0, 255, 0),
	AnswerIncorrect: RGB(255, 50, 50),

	AnswerButtonNormal:    RGB(40, 60, 110),
	AnswerButtonCorrect:   RGB(0, 160, 0),
	AnswerButtonIncorrect: RGB(180, 40, 40),

	Accent: RGB(0, 150, 255),
}

// Fallback is used when a configured name is not in the catalog.
var Fallback = GoldPurple

var catalog = map[string]Scheme{
	Grayscale.Name:  Grayscale,
	GoldPurple.Name: GoldPurple,
	Colorblind.Name: Colorblind,
	Classic.Name:    Classic,
}
