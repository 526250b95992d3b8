package validators

import "go.mongodb.org/mongo-driver/bson"

var CompanyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "billing_email", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"name":          bson.M{"bsonType": "string"},
			"billing_email": bson.M{"bsonType": "string"},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}

var ContractValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"company_id",
			"plan_name",
			"seats",
			"monthly_credits",
			"start_date",
			"status",
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

			"plan_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"seats": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"monthly_credits": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"active", "suspended", "terminated"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"company_id", "email", "first_name", "last_name", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"company_id":  bson.M{"bsonType": "string"},
			"contract_id": bson.M{"bsonType": "string"},
			"email":       bson.M{"bsonType": "string"},
			"first_name":  bson.M{"bsonType": "string"},
			"last_name":   bson.M{"bsonType": "string"},
			"status":      bson.M{"enum": []string{"active", "inactive"}},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
