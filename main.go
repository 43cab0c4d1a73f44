package main

import (
	"fmt"
	"os"

	"q.log/milp/instance"
	"q.log/milp/simplex"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: milp <file.mps>")
		os.Exit(2)
	}

	r := instance.NewReader(os.Args[1])
	m, err := r.ConstructModelFromFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	solution := simplex.Solve(m, nil)
	fmt.Printf("status: %s\n", solution.Status)
	fmt.Printf("objective: %g\n", solution.Result)
	for _, v := range solution.Variables {
		fmt.Printf("%s = %g\n", v.Key, v.Value)
	}
}
