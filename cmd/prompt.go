package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/canvasops/canvasctl/pkg/grader"
)

// Interactive pickers shared by the grading commands. All of them read from
// stdin; typing "exit" at a numbered prompt aborts the selection.

var stdin = bufio.NewReader(os.Stdin)

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// chooseIndex prompts for a 1-based selection and returns the 0-based index,
// or ok=false when the user backs out.
func chooseIndex(prompt string, max int) (int, bool) {
	for {
		fmt.Printf("\n%s (1-%d, or 'exit'): ", prompt, max)
		line, err := readLine()
		if err != nil {
			return 0, false
		}
		if strings.EqualFold(line, "exit") {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > max {
			fmt.Printf("Please enter a number between 1 and %d\n", max)
			continue
		}
		return n - 1, true
	}
}

// chooseCourse lists the instructor's favorited courses and prompts for one.
func chooseCourse(ctx context.Context) (canvas.Course, bool, error) {
	courses, err := client.FavoriteCourses(ctx)
	if err != nil {
		return canvas.Course{}, false, err
	}
	if len(courses) == 0 {
		return canvas.Course{}, false, fmt.Errorf("no favorited courses; star courses in Canvas first")
	}
	fmt.Println("\nYour courses:")
	for i, c := range courses {
		fmt.Printf("%d. [%s] %s\n", i+1, c.CourseCode, c.Name)
	}
	ci, ok := chooseIndex("Select a course", len(courses))
	if !ok {
		return canvas.Course{}, false, nil
	}
	return courses[ci], true, nil
}

func confirm(prompt string) bool {
	for {
		fmt.Printf("\n%s (y/n): ", prompt)
		line, err := readLine()
		if err != nil {
			return false
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Println("Please answer y or n")
	}
}

// readGuidelines collects multi-line grading guidelines, ending on an empty
// line. An empty body falls back to the defaults.
func readGuidelines() (string, bool) {
	fmt.Println("\nEnter grading guidelines, finishing with an empty line.")
	fmt.Println("Leave empty to use the default guidelines.")

	var lines []string
	for {
		line, err := stdin.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	guidelines := strings.TrimSpace(strings.Join(lines, "\n"))
	if guidelines == "" {
		guidelines = grader.DefaultGuidelines
		fmt.Println("\nUsing default grading guidelines:")
	} else {
		fmt.Println("\nYour grading guidelines:")
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Println(guidelines)
	fmt.Println(strings.Repeat("-", 70))

	if !confirm("Use these guidelines?") {
		return "", false
	}
	return guidelines, true
}
