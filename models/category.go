package models

// Category is a user-owned node of the category forest.
type Category struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	UserId string `json:"user_id"`
}

// CategoryLink marks ChildrenId as a direct child of ParentId.
// An empty ParentId is a root marker.
type CategoryLink struct {
	ParentId   string `json:"parent_id"`
	ChildrenId string `json:"children_id"`
}

// CategoryView is a category as shown in a report, without its owner.
type CategoryView struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

func (c Category) View() CategoryView {
	return CategoryView{Id: c.Id, Name: c.Name}
}
