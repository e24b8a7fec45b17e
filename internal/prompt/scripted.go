package prompt

import (
	"context"
	"strconv"
)

// Scripted is a Prompter that replays fixed answers and records questions.
// An empty answer, or running out of answers, selects the default.
// A done context fails the question before an answer is consumed.
type Scripted struct {
	Answers []string
	Asked   []string
}

// Input implements Prompter.
func (s *Scripted) Input(ctx context.Context, question, def string) (string, error) {
	s.Asked = append(s.Asked, question)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a := s.next(); a != "" {
		return a, nil
	}
	return def, nil
}

// Confirm implements Prompter. Answers are parsed with strconv.ParseBool.
func (s *Scripted) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	s.Asked = append(s.Asked, question)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a := s.next()
	if a == "" {
		return def, nil
	}
	return strconv.ParseBool(a)
}

func (s *Scripted) next() string {
	if len(s.Answers) == 0 {
		return ""
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return a
}
