package query

import (
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// catalog builds the product/order entity graph used across the package
// tests, mirroring the descriptors shipped in db/.
func catalog() map[string]*schema.Entity {
	brand := entity("brand", "brands",
		"id", "identifier", "name", "string", "is_active", "boolean", "created_at", "datetime")
	category := entity("category", "categories",
		"id", "identifier", "name", "string", "is_active", "boolean", "created_at", "datetime")
	product := entity("product", "products",
		"id", "identifier", "name", "string", "sku", "string", "price", "decimal",
		"is_active", "boolean", "created_at", "datetime", "brand_id", "identifier", "category_id", "identifier")
	warehouse := entity("warehouse", "warehouses",
		"id", "identifier", "name", "string", "city", "string", "created_at", "datetime")
	stock := entity("stock", "stocks",
		"id", "identifier", "qty", "integer", "reserved", "integer", "updated_at", "datetime",
		"product_id", "identifier", "warehouse_id", "identifier")
	customer := entity("customer", "customers",
		"id", "identifier", "full_name", "string", "email", "string", "created_at", "datetime")
	order := entity("order", "orders",
		"id", "identifier", "status", "string", "created_at", "datetime", "customer_id", "identifier")
	orderItem := entity("order_item", "order_items",
		"id", "identifier", "qty", "integer", "unit_price", "decimal",
		"order_id", "identifier", "product_id", "identifier")

	brand.Relations = map[string]*schema.Relation{
		"products": rel("has_many", "product", "brand_id", product),
	}
	brand.AllowedJoins = []string{"products", "products.category"}

	category.Relations = map[string]*schema.Relation{
		"products": rel("has_many", "product", "category_id", product),
	}

	product.Relations = map[string]*schema.Relation{
		"brand":       rel("belongs_to", "brand", "brand_id", brand),
		"category":    rel("belongs_to", "category", "category_id", category),
		"stocks":      rel("has_many", "stock", "product_id", stock),
		"order_items": rel("has_many", "order_item", "product_id", orderItem),
	}
	product.AllowedJoins = []string{
		"brand", "category", "stocks", "stocks.warehouse",
		"order_items", "order_items.order", "order_items.order.customer",
	}

	warehouse.Relations = map[string]*schema.Relation{
		"stocks": rel("has_many", "stock", "warehouse_id", stock),
	}
	warehouse.AllowedJoins = []string{"stocks", "stocks.product"}

	stock.Relations = map[string]*schema.Relation{
		"product":   rel("belongs_to", "product", "product_id", product),
		"warehouse": rel("belongs_to", "warehouse", "warehouse_id", warehouse),
	}
	stock.AllowedJoins = []string{"product", "warehouse", "product.brand"}

	customer.Relations = map[string]*schema.Relation{
		"orders": rel("has_many", "order", "customer_id", order),
	}
	customer.AllowedJoins = []string{"orders", "orders.items"}

	order.Relations = map[string]*schema.Relation{
		"customer": rel("belongs_to", "customer", "customer_id", customer),
		"items":    rel("has_many", "order_item", "order_id", orderItem),
	}
	order.AllowedJoins = []string{"customer", "items", "items.product"}

	orderItem.Relations = map[string]*schema.Relation{
		"order":   rel("belongs_to", "order", "order_id", order),
		"product": rel("belongs_to", "product", "product_id", product),
	}
	orderItem.AllowedJoins = []string{"order", "product", "order.customer"}

	return map[string]*schema.Entity{
		"brand": brand, "category": category, "product": product,
		"warehouse": warehouse, "stock": stock, "customer": customer,
		"order": order, "order_item": orderItem,
	}
}

func entity(name, table string, fieldPairs ...string) *schema.Entity {
	fs := schema.FieldSet{Types: map[string]schema.FieldType{}}
	for i := 0; i+1 < len(fieldPairs); i += 2 {
		fs.Types[fieldPairs[i]] = schema.FieldType(fieldPairs[i+1])
		fs.Order = append(fs.Order, fieldPairs[i])
	}
	return &schema.Entity{Name: name, Resource: table, Table: table, Fields: fs}
}

func rel(typ, target, fk string, ref *schema.Entity) *schema.Relation {
	r := &schema.Relation{Type: typ, Entity: target, FK: fk, PK: "id"}
	r.SetTarget(ref)
	return r
}
