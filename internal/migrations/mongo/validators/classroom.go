package validators

import "go.mongodb.org/mongo-driver/bson"

var ClassroomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_name",
			"building",
			"capacity",
			"base_status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"room_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"building": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  2000,
			},

			"base_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Available",
					"Unavailable",
				},
			},
		},
	},
}
