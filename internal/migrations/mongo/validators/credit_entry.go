package validators

import "go.mongodb.org/mongo-driver/bson"

var CreditEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"company_id",
			"contract_id",
			"period_start",
			"allocated",
			"consumed",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"company_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"contract_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"period_start": bson.M{
				"bsonType": "date",
			},

			"allocated": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"consumed": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
