package validators

import "go.mongodb.org/mongo-driver/bson"

var GigValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"title",
			"is_client_band",
			"is_active",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"is_client_band": bson.M{
				"bsonType": "bool",
			},

			"band_category": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"role", "max_slots"},
					"properties": bson.M{
						"role": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 60,
						},
						"max_slots": bson.M{
							"bsonType": "int",
							"minimum":  1,
							"maximum":  20,
						},
						"filled_slots": bson.M{
							"bsonType": "int",
							"minimum":  0,
						},
						"booked_users": bson.M{
							"bsonType": "array",
							"items":    bson.M{"bsonType": "string"},
						},
						"applicants": bson.M{
							"bsonType": "array",
							"items":    bson.M{"bsonType": "string"},
						},
					},
				},
			},

			"max_slots": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  50,
			},

			"book_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"payment_status": bson.M{
				"enum": []string{"pending", "paid", "refunded"},
			},

			"version": bson.M{
				"bsonType": "long",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
