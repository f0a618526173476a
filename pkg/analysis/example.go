package analysis

// Demo article loaded by the example action of the input view.
const (
	ExampleURL  = "https://www.beispiel-zeitung.de/politik/artikel-123"
	ExampleText = "Die Regierung wurde für ihre heldenhafte Entscheidung gefeiert. " +
		"Doch Kritiker warnen vor einer Katastrophe, die das Land in den Abgrund stürzen könnte. " +
		"Man muss sich fragen, ob die einfachen Bürger wieder die Zeche für die Fehler der Eliten zahlen müssen. " +
		"Die Zukunft unserer Kinder steht auf dem Spiel! " +
		"Es ist ein Skandal, der seinesgleichen sucht."
)
