package models

// BuiltinExercises is the immutable exercise catalog shipped with the app.
// User-created custom exercises are layered on top of this set; built-in
// entries are never persisted or synced.
var BuiltinExercises = []Exercise{
	// Chest
	{ID: "ex_1", Name: "Bench Press", MuscleGroup: MuscleChest, Category: EquipBarbell, Description: "Classic chest exercise with barbell"},
	{ID: "ex_2", Name: "Incline Bench Press", MuscleGroup: MuscleChest, Category: EquipBarbell, Description: "Upper chest focused press"},
	{ID: "ex_3", Name: "Dumbbell Chest Press", MuscleGroup: MuscleChest, Category: EquipDumbbell, Description: "Dumbbell variation of bench press"},
	{ID: "ex_4", Name: "Incline Dumbbell Press", MuscleGroup: MuscleChest, Category: EquipDumbbell, Description: "Incline dumbbell chest press"},
	{ID: "ex_5", Name: "Cable Chest Fly", MuscleGroup: MuscleChest, Category: EquipCable, Description: "Cable crossover fly for chest"},
	{ID: "ex_6", Name: "Dumbbell Fly", MuscleGroup: MuscleChest, Category: EquipDumbbell, Description: "Flat dumbbell fly for chest isolation"},
	{ID: "ex_7", Name: "Push-Ups", MuscleGroup: MuscleChest, Category: EquipBodyweight, Description: "Bodyweight chest exercise"},
	{ID: "ex_8", Name: "Chest Dips", MuscleGroup: MuscleChest, Category: EquipBodyweight, Description: "Dips targeting chest muscles"},
	{ID: "ex_9", Name: "Machine Chest Press", MuscleGroup: MuscleChest, Category: EquipMachine, Description: "Machine based chest press"},
	{ID: "ex_10", Name: "Pec Deck", MuscleGroup: MuscleChest, Category: EquipMachine, Description: "Machine fly for chest isolation"},

	// Back
	{ID: "ex_11", Name: "Deadlift", MuscleGroup: MuscleBack, Category: EquipBarbell, Description: "Full body compound lift"},
	{ID: "ex_12", Name: "Barbell Row", MuscleGroup: MuscleBack, Category: EquipBarbell, Description: "Bent over barbell row"},
	{ID: "ex_13", Name: "Pull-Ups", MuscleGroup: MuscleBack, Category: EquipBodyweight, Description: "Bodyweight pull-up exercise"},
	{ID: "ex_14", Name: "Lat Pulldown", MuscleGroup: MuscleBack, Category: EquipCable, Description: "Cable lat pulldown"},
	{ID: "ex_15", Name: "Seated Cable Row", MuscleGroup: MuscleBack, Category: EquipCable, Description: "Seated cable row for back"},
	{ID: "ex_16", Name: "Dumbbell Row", MuscleGroup: MuscleBack, Category: EquipDumbbell, Description: "One arm dumbbell row"},
	{ID: "ex_17", Name: "T-Bar Row", MuscleGroup: MuscleBack, Category: EquipBarbell, Description: "T-bar row for mid back"},
	{ID: "ex_18", Name: "Face Pulls", MuscleGroup: MuscleBack, Category: EquipCable, Description: "Cable face pulls for rear delts/upper back"},
	{ID: "ex_19", Name: "Chin-Ups", MuscleGroup: MuscleBack, Category: EquipBodyweight, Description: "Underhand grip pull-ups"},

	// Shoulders
	{ID: "ex_20", Name: "Overhead Press", MuscleGroup: MuscleShoulders, Category: EquipBarbell, Description: "Standing barbell overhead press"},
	{ID: "ex_21", Name: "Dumbbell Shoulder Press", MuscleGroup: MuscleShoulders, Category: EquipDumbbell, Description: "Seated dumbbell shoulder press"},
	{ID: "ex_22", Name: "Lateral Raises", MuscleGroup: MuscleShoulders, Category: EquipDumbbell, Description: "Dumbbell lateral raises"},
	{ID: "ex_23", Name: "Front Raises", MuscleGroup: MuscleShoulders, Category: EquipDumbbell, Description: "Dumbbell front raises"},
	{ID: "ex_24", Name: "Rear Delt Fly", MuscleGroup: MuscleShoulders, Category: EquipDumbbell, Description: "Rear deltoid fly"},
	{ID: "ex_25", Name: "Arnold Press", MuscleGroup: MuscleShoulders, Category: EquipDumbbell, Description: "Rotating dumbbell press"},
	{ID: "ex_26", Name: "Cable Lateral Raise", MuscleGroup: MuscleShoulders, Category: EquipCable, Description: "Cable lateral raises"},

	// Biceps
	{ID: "ex_27", Name: "Barbell Curl", MuscleGroup: MuscleBiceps, Category: EquipBarbell, Description: "Standing barbell bicep curl"},
	{ID: "ex_28", Name: "Dumbbell Curl", MuscleGroup: MuscleBiceps, Category: EquipDumbbell, Description: "Standing dumbbell bicep curl"},
	{ID: "ex_29", Name: "Hammer Curl", MuscleGroup: MuscleBiceps, Category: EquipDumbbell, Description: "Neutral grip dumbbell curl"},
	{ID: "ex_30", Name: "Preacher Curl", MuscleGroup: MuscleBiceps, Category: EquipBarbell, Description: "Preacher bench bicep curl"},
	{ID: "ex_31", Name: "Cable Curl", MuscleGroup: MuscleBiceps, Category: EquipCable, Description: "Cable bicep curl"},
	{ID: "ex_32", Name: "Incline Dumbbell Curl", MuscleGroup: MuscleBiceps, Category: EquipDumbbell, Description: "Incline bench dumbbell curl"},

	// Triceps
	{ID: "ex_33", Name: "Tricep Pushdown", MuscleGroup: MuscleTriceps, Category: EquipCable, Description: "Cable tricep pushdown"},
	{ID: "ex_34", Name: "Overhead Tricep Extension", MuscleGroup: MuscleTriceps, Category: EquipDumbbell, Description: "Overhead dumbbell tricep extension"},
	{ID: "ex_35", Name: "Skull Crushers", MuscleGroup: MuscleTriceps, Category: EquipBarbell, Description: "Lying tricep extension"},
	{ID: "ex_36", Name: "Close Grip Bench Press", MuscleGroup: MuscleTriceps, Category: EquipBarbell, Description: "Close grip barbell bench press"},
	{ID: "ex_37", Name: "Tricep Dips", MuscleGroup: MuscleTriceps, Category: EquipBodyweight, Description: "Bodyweight tricep dips"},
	{ID: "ex_38", Name: "Cable Overhead Extension", MuscleGroup: MuscleTriceps, Category: EquipCable, Description: "Cable overhead tricep extension"},

	// Legs
	{ID: "ex_39", Name: "Squat", MuscleGroup: MuscleLegs, Category: EquipBarbell, Description: "Barbell back squat"},
	{ID: "ex_40", Name: "Front Squat", MuscleGroup: MuscleLegs, Category: EquipBarbell, Description: "Barbell front squat"},
	{ID: "ex_41", Name: "Leg Press", MuscleGroup: MuscleLegs, Category: EquipMachine, Description: "Machine leg press"},
	{ID: "ex_42", Name: "Romanian Deadlift", MuscleGroup: MuscleLegs, Category: EquipBarbell, Description: "Romanian deadlift for hamstrings"},
	{ID: "ex_43", Name: "Leg Extension", MuscleGroup: MuscleLegs, Category: EquipMachine, Description: "Machine leg extension"},
	{ID: "ex_44", Name: "Leg Curl", MuscleGroup: MuscleLegs, Category: EquipMachine, Description: "Machine leg curl"},
	{ID: "ex_45", Name: "Lunges", MuscleGroup: MuscleLegs, Category: EquipDumbbell, Description: "Walking or stationary lunges"},
	{ID: "ex_46", Name: "Bulgarian Split Squat", MuscleGroup: MuscleLegs, Category: EquipDumbbell, Description: "Bulgarian split squat"},
	{ID: "ex_47", Name: "Calf Raises", MuscleGroup: MuscleLegs, Category: EquipMachine, Description: "Machine calf raises"},
	{ID: "ex_48", Name: "Hack Squat", MuscleGroup: MuscleLegs, Category: EquipMachine, Description: "Machine hack squat"},

	// Glutes
	{ID: "ex_49", Name: "Hip Thrust", MuscleGroup: MuscleGlutes, Category: EquipBarbell, Description: "Barbell hip thrust"},
	{ID: "ex_50", Name: "Glute Bridge", MuscleGroup: MuscleGlutes, Category: EquipBodyweight, Description: "Bodyweight glute bridge"},
	{ID: "ex_51", Name: "Cable Kickback", MuscleGroup: MuscleGlutes, Category: EquipCable, Description: "Cable glute kickback"},
	{ID: "ex_52", Name: "Sumo Deadlift", MuscleGroup: MuscleGlutes, Category: EquipBarbell, Description: "Sumo stance deadlift"},

	// Abs
	{ID: "ex_53", Name: "Crunches", MuscleGroup: MuscleAbs, Category: EquipBodyweight, Description: "Basic crunches"},
	{ID: "ex_54", Name: "Plank", MuscleGroup: MuscleAbs, Category: EquipBodyweight, Description: "Plank hold for core stability"},
	{ID: "ex_55", Name: "Hanging Leg Raise", MuscleGroup: MuscleAbs, Category: EquipBodyweight, Description: "Hanging leg raises for lower abs"},
	{ID: "ex_56", Name: "Cable Crunch", MuscleGroup: MuscleAbs, Category: EquipCable, Description: "Cable crunch for abs"},
	{ID: "ex_57", Name: "Russian Twist", MuscleGroup: MuscleAbs, Category: EquipBodyweight, Description: "Russian twist for obliques"},
	{ID: "ex_58", Name: "Ab Wheel Rollout", MuscleGroup: MuscleAbs, Category: EquipOther, Description: "Ab wheel rollout"},

	// Cardio
	{ID: "ex_59", Name: "Treadmill Running", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Running on treadmill"},
	{ID: "ex_60", Name: "Cycling", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Stationary bike cycling"},
	{ID: "ex_61", Name: "Rowing Machine", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Rowing machine cardio"},
	{ID: "ex_62", Name: "Stair Climber", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Stair climber machine"},
	{ID: "ex_63", Name: "Jump Rope", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Jump rope cardio"},
	{ID: "ex_64", Name: "Elliptical", MuscleGroup: MuscleCardio, Category: EquipCardio, Description: "Elliptical trainer"},
}
