package canvas

import (
	"context"
	"encoding/json"
	"net/url"
)

type Course struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	CourseCode    string `json:"course_code"`
	WorkflowState string `json:"workflow_state"`
}

// FavoriteCourses lists the courses the instructor has starred in Canvas.
func (c *Client) FavoriteCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.paginate(ctx, "api/v1/users/self/favorites/courses", nil, func(body []byte) error {
		var page []Course
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		courses = append(courses, page...)
		return nil
	})
	return courses, err
}

// TeachingCourses lists every available course with a teacher enrollment.
func (c *Client) TeachingCourses(ctx context.Context) ([]Course, error) {
	q := url.Values{}
	q.Set("enrollment_type", "teacher")
	q.Set("state[]", "available")
	var courses []Course
	err := c.paginate(ctx, "api/v1/courses", q, func(body []byte) error {
		var page []Course
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		courses = append(courses, page...)
		return nil
	})
	return courses, err
}
