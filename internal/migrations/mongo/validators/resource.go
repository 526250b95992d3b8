package validators

import "go.mongodb.org/mongo-driver/bson"

var SiteValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "city", "address", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string"},
			"city":       bson.M{"bsonType": "string"},
			"address":    bson.M{"bsonType": "string"},
			"time_zone":  bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"site_id",
			"name",
			"type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"site_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"type": bson.M{
				"enum": []string{"meeting_room", "flex_desk"},
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"hourly_credit_rate": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"daily_credit_rate": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"available", "unavailable", "maintenance"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
