package pipeline

import "testing"

func TestExitCode(t *testing.T) {
	cases := []struct {
		name    string
		results []Result
		want    int
	}{
		{"empty", nil, 0},
		{"all succeeded", []Result{{Status: StatusSucceeded}, {Status: StatusSucceeded}}, 0},
		{"one failed", []Result{{Status: StatusSucceeded}, {Status: StatusFailed}}, 2},
		{"one cancelled, none failed", []Result{{Status: StatusSucceeded}, {Status: StatusCancelled}}, 130},
		{"failed takes priority over cancelled", []Result{{Status: StatusCancelled}, {Status: StatusFailed}}, 2},
		{"all cancelled", []Result{{Status: StatusCancelled}, {Status: StatusCancelled}}, 130},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ExitCode(c.results); got != c.want {
				t.Errorf("ExitCode(%v) = %d, want %d", c.results, got, c.want)
			}
		})
	}
}
