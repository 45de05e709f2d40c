package graphql

import "github.com/graphql-go/graphql"

var userActionTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "UserActionType",
	Values: graphql.EnumValueConfigMap{
		"VIEW_PRODUCT": &graphql.EnumValueConfig{Value: "VIEW_PRODUCT"},
		"SEARCH":       &graphql.EnumValueConfig{Value: "SEARCH"},
		"ADD_TO_CART":  &graphql.EnumValueConfig{Value: "ADD_TO_CART"},
		"PURCHASE":     &graphql.EnumValueConfig{Value: "PURCHASE"},
		"LIKE":         &graphql.EnumValueConfig{Value: "LIKE"},
		"SHARE":        &graphql.EnumValueConfig{Value: "SHARE"},
		"CHAT_MESSAGE": &graphql.EnumValueConfig{Value: "CHAT_MESSAGE"},
	},
})

var notificationPreferencesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NotificationPreferences",
	Fields: graphql.Fields{
		"email":           &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"push":            &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"sms":             &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"deals":           &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"recommendations": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var userPreferencesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserPreferences",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"categories":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"priceRange":    &graphql.Field{Type: priceRangeType},
		"brands":        &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"notifications": &graphql.Field{Type: graphql.NewNonNull(notificationPreferencesType)},
		"updatedAt":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userActivitySummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserActivitySummary",
	Fields: graphql.Fields{
		"totalSearches":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalViews":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalPurchases":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"favoriteCategories": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"lastSearches":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
	},
})

var userProfileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserProfile",
	Fields: graphql.Fields{
		"userId":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"preferences":       &graphql.Field{Type: userPreferencesType},
		"activitySummary":   &graphql.Field{Type: graphql.NewNonNull(userActivitySummaryType)},
		"conversationCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"sessionCount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lastActive":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var notificationPreferencesInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "NotificationPreferencesInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":           &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"push":            &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"sms":             &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"deals":           &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"recommendations": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var updateUserPreferencesInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateUserPreferencesInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"userId":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"categories":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"priceRange":    &graphql.InputObjectFieldConfig{Type: priceRangeInput},
		"brands":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"notifications": &graphql.InputObjectFieldConfig{Type: notificationPreferencesInput},
	},
})

var userActivityInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UserActivityInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"userId":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"action":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(userActionTypeEnum)},
		"productId": &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"metadata":  &graphql.InputObjectFieldConfig{Type: JSONScalar},
	},
})
