package sonar

import "net/url"

// DuplicationsResult expands a DuplicatedBlocks issue into the involved blocks.
// Files is keyed by the _ref markers the blocks point at.
type DuplicationsResult struct {
	Duplications []Duplication             `json:"duplications"`
	Files        map[string]DuplicatedFile `json:"files"`
}

type Duplication struct {
	Blocks []DuplicationBlock `json:"blocks"`
}

type DuplicationBlock struct {
	From int    `json:"from"`
	Size int    `json:"size"`
	Ref  string `json:"_ref"`
}

type DuplicatedFile struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ShowDuplications fetches the duplication blocks of one component.
func (c *Client) ShowDuplications(key string) (*DuplicationsResult, error) {
	params := url.Values{}
	params.Set("key", key)
	result := &DuplicationsResult{}
	if err := c.postJSON("/api/duplications/show", params, result); err != nil {
		return nil, err
	}
	return result, nil
}
