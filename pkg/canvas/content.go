package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Content listing and publish toggles. Each Canvas content kind takes its own
// payload shape: files accept JSON, the rest want bracketed form fields, and
// modules additionally require the module name on every update.

type File struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Published   bool   `json:"published"`
}

type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

type Module struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Published bool   `json:"published"`
}

type ModuleItem struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

func (c *Client) Files(ctx context.Context, courseID int) ([]File, error) {
	var files []File
	err := c.paginate(ctx, fmt.Sprintf("api/v1/courses/%d/files", courseID), nil, func(body []byte) error {
		var page []File
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		files = append(files, page...)
		return nil
	})
	return files, err
}

func (c *Client) Pages(ctx context.Context, courseID int) ([]Page, error) {
	var pages []Page
	err := c.paginate(ctx, fmt.Sprintf("api/v1/courses/%d/pages", courseID), nil, func(body []byte) error {
		var page []Page
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		pages = append(pages, page...)
		return nil
	})
	return pages, err
}

func (c *Client) Modules(ctx context.Context, courseID int) ([]Module, error) {
	var modules []Module
	err := c.paginate(ctx, fmt.Sprintf("api/v1/courses/%d/modules", courseID), nil, func(body []byte) error {
		var page []Module
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		modules = append(modules, page...)
		return nil
	})
	return modules, err
}

func (c *Client) ModuleItems(ctx context.Context, courseID, moduleID int) ([]ModuleItem, error) {
	var items []ModuleItem
	path := fmt.Sprintf("api/v1/courses/%d/modules/%d/items", courseID, moduleID)
	err := c.paginate(ctx, path, nil, func(body []byte) error {
		var page []ModuleItem
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		items = append(items, page...)
		return nil
	})
	return items, err
}

func (c *Client) SetFilePublished(ctx context.Context, fileID int, published bool) error {
	payload := map[string]bool{"published": published}
	return c.putJSON(ctx, fmt.Sprintf("api/v1/files/%d", fileID), payload, nil)
}

func (c *Client) SetPagePublished(ctx context.Context, courseID int, pageURL string, published bool) error {
	form := url.Values{}
	form.Set("wiki_page[published]", strconv.FormatBool(published))
	return c.putForm(ctx, fmt.Sprintf("api/v1/courses/%d/pages/%s", courseID, pageURL), form)
}

func (c *Client) SetModulePublished(ctx context.Context, courseID int, module Module, published bool) error {
	form := url.Values{}
	form.Set("module[published]", strconv.FormatBool(published))
	form.Set("module[name]", module.Name)
	return c.putForm(ctx, fmt.Sprintf("api/v1/courses/%d/modules/%d", courseID, module.ID), form)
}

func (c *Client) SetModuleItemPublished(ctx context.Context, courseID, moduleID, itemID int, published bool) error {
	form := url.Values{}
	form.Set("module_item[published]", strconv.FormatBool(published))
	path := fmt.Sprintf("api/v1/courses/%d/modules/%d/items/%d", courseID, moduleID, itemID)
	return c.putForm(ctx, path, form)
}
