package graphql

import "github.com/graphql-go/graphql"

var productSortByEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ProductSortBy",
	Values: graphql.EnumValueConfigMap{
		"RELEVANCE":         &graphql.EnumValueConfig{Value: "RELEVANCE"},
		"PRICE_LOW_TO_HIGH": &graphql.EnumValueConfig{Value: "PRICE_LOW_TO_HIGH"},
		"PRICE_HIGH_TO_LOW": &graphql.EnumValueConfig{Value: "PRICE_HIGH_TO_LOW"},
		"NEWEST":            &graphql.EnumValueConfig{Value: "NEWEST"},
		"POPULAR":           &graphql.EnumValueConfig{Value: "POPULAR"},
		"RATING":            &graphql.EnumValueConfig{Value: "RATING"},
	},
})

var priceRangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PriceRange",
	Fields: graphql.Fields{
		"min": &graphql.Field{Type: graphql.Float},
		"max": &graphql.Field{Type: graphql.Float},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"category":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"imageUrl":    &graphql.Field{Type: graphql.String},
		"tags":        &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"rating":      &graphql.Field{Type: graphql.Float},
		"reviewCount": &graphql.Field{Type: graphql.Int},
		"inStock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"featured":    &graphql.Field{Type: graphql.Boolean},
		"similarity":  &graphql.Field{Type: graphql.Float},
		"metadata":    &graphql.Field{Type: JSONScalar},
		"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"productCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var appliedFiltersType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AppliedFilters",
	Fields: graphql.Fields{
		"query":      &graphql.Field{Type: graphql.String},
		"category":   &graphql.Field{Type: graphql.String},
		"priceRange": &graphql.Field{Type: priceRangeType},
		"sortBy":     &graphql.Field{Type: productSortByEnum},
	},
})

var productSearchResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductSearchResult",
	Fields: graphql.Fields{
		"products": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))},
		"total":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"hasMore":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"filters":  &graphql.Field{Type: appliedFiltersType},
	},
})

var entityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Entity",
	Fields: graphql.Fields{
		"type":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"value":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"confidence": &graphql.Field{Type: graphql.Float},
	},
})

var sentimentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Sentiment",
	Fields: graphql.Fields{
		"score": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"label": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var aiResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AIResponse",
	Fields: graphql.Fields{
		"text":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"confidence": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"intent":     &graphql.Field{Type: graphql.String},
		"entities":   &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(entityType))},
		"sentiment":  &graphql.Field{Type: sentimentType},
	},
})

var chatResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ChatResponse",
	Fields: graphql.Fields{
		"success":        &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"message":        &graphql.Field{Type: graphql.String},
		"conversationId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"aiResponse":     &graphql.Field{Type: graphql.NewNonNull(aiResponseType)},
		"products":       &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(productType))},
		"suggestions":    &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"timestamp":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var conversationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Conversation",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"conversationId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"userMessage":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"aiResponse":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"products":       &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(productType))},
		"timestamp":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"metadata":       &graphql.Field{Type: JSONScalar},
	},
})

var conversationSessionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ConversationSession",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var serviceStatusType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ServiceStatus",
	Fields: graphql.Fields{
		"database": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"llm":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"redis":    &graphql.Field{Type: graphql.Boolean},
	},
})

var healthStatusType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HealthStatus",
	Fields: graphql.Fields{
		"status":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"timestamp": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"services":  &graphql.Field{Type: graphql.NewNonNull(serviceStatusType)},
		"version":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// Inputs

var priceRangeInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PriceRangeInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"min": &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"max": &graphql.InputObjectFieldConfig{Type: graphql.Float},
	},
})

var productFiltersInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductFiltersInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"inStock":  &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"featured": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"tags":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
	},
})

var productSearchInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductSearchInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"query":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"category":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"priceRange": &graphql.InputObjectFieldConfig{Type: priceRangeInput},
		"filters":    &graphql.InputObjectFieldConfig{Type: productFiltersInput},
		"limit":      &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 10},
		"offset":     &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
		"sortBy":     &graphql.InputObjectFieldConfig{Type: productSortByEnum, DefaultValue: "RELEVANCE"},
	},
})

var recommendationInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "RecommendationInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"userId":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"productId": &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"category":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"limit":     &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 5},
	},
})

var sendMessageInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SendMessageInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"message":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"userId":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"conversationId": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"metadata":       &graphql.InputObjectFieldConfig{Type: JSONScalar},
	},
})

var addProductInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AddProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"category":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"imageUrl":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"tags":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"inStock":     &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"featured":    &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"metadata":    &graphql.InputObjectFieldConfig{Type: JSONScalar},
	},
})

var updateProductInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"price":       &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"category":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"imageUrl":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"tags":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"inStock":     &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"featured":    &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"metadata":    &graphql.InputObjectFieldConfig{Type: JSONScalar},
	},
})
