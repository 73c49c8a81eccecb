package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"room_type",
			"beds",
			"capacity",
			"price_per_night",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"room_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"beds": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  6,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  12,
			},

			"price_per_night": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items":    bson.M{"bsonType": "string"},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RoomLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
