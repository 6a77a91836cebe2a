package client

import (
	"github.com/splitkaro/bff-go/internal/domain"

	"github.com/tidwall/gjson"
)

// The upstream API is loose about shapes: list endpoints sometimes return a
// bare object instead of an array, identifiers flip between numbers and
// strings, and group payloads spell their identifier groupCode, code, or id
// depending on the handler that produced them. Everything is normalized here,
// once, so the rest of the codebase only ever sees canonical string fields.

// parseGroups decodes a my-groups payload into normalized groups.
func parseGroups(body []byte) []domain.Group {
	root := gjson.ParseBytes(body)

	switch {
	case root.IsArray():
		return groupsFromArray(root)
	case root.Get("groups").IsArray():
		return groupsFromArray(root.Get("groups"))
	case root.IsObject():
		g := groupFromJSON(root)
		if g.Code == "" && g.Name == "" {
			return nil
		}
		return []domain.Group{g}
	default:
		return nil
	}
}

func groupsFromArray(arr gjson.Result) []domain.Group {
	var out []domain.Group
	arr.ForEach(func(_, item gjson.Result) bool {
		out = append(out, groupFromJSON(item))
		return true
	})
	return out
}

func groupFromJSON(g gjson.Result) domain.Group {
	group := domain.Group{
		Code: firstString(g, "groupCode", "code", "id", "_id"),
		Name: firstString(g, "groupName", "name"),
	}

	members(g, "users", "members").ForEach(func(_, m gjson.Result) bool {
		group.Members = append(group.Members, memberFromJSON(m))
		return true
	})
	g.Get("expenses").ForEach(func(_, e gjson.Result) bool {
		group.Expenses = append(group.Expenses, expenseFromJSON(e))
		return true
	})
	return group
}

func memberFromJSON(m gjson.Result) domain.Member {
	member := domain.Member{
		UserID:   firstString(m, "userId", "id", "_id"),
		Name:     m.Get("name").String(),
		Username: m.Get("username").String(),
	}
	m.Get("expenses").ForEach(func(_, e gjson.Result) bool {
		member.Expenses = append(member.Expenses, expenseFromJSON(e))
		return true
	})
	return member
}

func expenseFromJSON(e gjson.Result) domain.Expense {
	exp := domain.Expense{
		ID:          firstString(e, "id", "_id"),
		Amount:      e.Get("amount").Float(),
		Description: e.Get("description").String(),
		PaidBy:      firstString(e, "paidBy", "paid_by"),
		UserID:      firstString(e, "userId", "user_id"),
		PaymentDate: firstString(e, "paymentDate", "date"),
	}
	e.Get("tags").ForEach(func(_, tag gjson.Result) bool {
		exp.Tags = append(exp.Tags, tag.String())
		return true
	})
	return exp
}

// firstString returns the first present field, coerced to its string form.
// gjson renders numeric values as their decimal text, which is exactly the
// canonicalization the matching logic relies on.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// groupFromJSONBytes decodes a single-group payload, tolerating wrappers like
// {"group": {...}}.
func groupFromJSONBytes(body []byte) domain.Group {
	root := gjson.ParseBytes(body)
	if inner := root.Get("group"); inner.IsObject() {
		root = inner
	}
	return groupFromJSON(root)
}

// members returns the first present member array field.
func members(g gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := g.Get(p); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}
