package tournament

import "dilemma/internal/model"

func alwaysCooperate() model.Automaton {
	return model.Automaton{Nodes: []model.Node{{Action: model.Cooperate, OnCooperate: 0, OnDefect: 0}}}
}

func alwaysDefect() model.Automaton {
	return model.Automaton{Nodes: []model.Node{{Action: model.Defect, OnCooperate: 0, OnDefect: 0}}}
}

// grimTrigger cooperates until the opponent defects once, then defects forever.
func grimTrigger() model.Automaton {
	return model.Automaton{Nodes: []model.Node{
		{Action: model.Cooperate, OnCooperate: 0, OnDefect: 1},
		{Action: model.Defect, OnCooperate: 1, OnDefect: 1},
	}}
}

func titForTat() model.Automaton {
	return model.Automaton{Nodes: []model.Node{
		{Action: model.Cooperate, OnCooperate: 0, OnDefect: 1},
		{Action: model.Defect, OnCooperate: 0, OnDefect: 1},
	}}
}
