package engine

import (
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

func testEntities() map[string]*schema.Entity {
	brand := testEntity("brand", "brands",
		"id", "identifier", "name", "string", "is_active", "boolean", "created_at", "datetime")
	category := testEntity("category", "categories",
		"id", "identifier", "name", "string", "is_active", "boolean", "created_at", "datetime")
	product := testEntity("product", "products",
		"id", "identifier", "name", "string", "sku", "string", "price", "decimal",
		"is_active", "boolean", "created_at", "datetime", "brand_id", "identifier", "category_id", "identifier")
	customer := testEntity("customer", "customers",
		"id", "identifier", "full_name", "string", "email", "string", "created_at", "datetime")
	order := testEntity("order", "orders",
		"id", "identifier", "status", "string", "created_at", "datetime", "customer_id", "identifier")
	orderItem := testEntity("order_item", "order_items",
		"id", "identifier", "qty", "integer", "unit_price", "decimal",
		"order_id", "identifier", "product_id", "identifier")

	product.Relations = map[string]*schema.Relation{
		"brand":       testRel("belongs_to", "brand", "brand_id", brand),
		"category":    testRel("belongs_to", "category", "category_id", category),
		"order_items": testRel("has_many", "order_item", "product_id", orderItem),
	}
	product.AllowedJoins = []string{
		"brand", "category", "order_items", "order_items.order", "order_items.order.customer",
	}

	order.Relations = map[string]*schema.Relation{
		"customer": testRel("belongs_to", "customer", "customer_id", customer),
	}
	orderItem.Relations = map[string]*schema.Relation{
		"order":   testRel("belongs_to", "order", "order_id", order),
		"product": testRel("belongs_to", "product", "product_id", product),
	}

	return map[string]*schema.Entity{
		"brand": brand, "category": category, "product": product,
		"customer": customer, "order": order, "order_item": orderItem,
	}
}

func testEntity(name, table string, fieldPairs ...string) *schema.Entity {
	fs := schema.FieldSet{Types: map[string]schema.FieldType{}}
	for i := 0; i+1 < len(fieldPairs); i += 2 {
		fs.Types[fieldPairs[i]] = schema.FieldType(fieldPairs[i+1])
		fs.Order = append(fs.Order, fieldPairs[i])
	}
	return &schema.Entity{Name: name, Resource: table, Table: table, Fields: fs}
}

func testRel(typ, target, fk string, ref *schema.Entity) *schema.Relation {
	r := &schema.Relation{Type: typ, Entity: target, FK: fk, PK: "id"}
	r.SetTarget(ref)
	return r
}
